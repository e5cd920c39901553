package recorder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymcpme/recorder/internal/domain"
)

// Generate compiles an ordered action log into a runnable Python automation
// script, one step per action, preserving order. It is pure and
// deterministic: identical inputs always produce byte-identical output,
// which callers rely on for caching and tests.
func Generate(actions []domain.RecordedAction, name, description string) string {
	var b strings.Builder

	b.WriteString("\"\"\"")
	b.WriteString(name)
	b.WriteString("\n")
	if description != "" {
		b.WriteString("\n")
		b.WriteString(description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nBrowser automation generated from a recorded session (%d actions).\n", len(actions))
	b.WriteString("\"\"\"\n\n")
	b.WriteString("from playwright.sync_api import sync_playwright\n\n\n")
	b.WriteString("def run(playwright):\n")
	b.WriteString("    browser = playwright.chromium.launch(headless=True)\n")
	b.WriteString("    page = browser.new_page()\n")

	for i, action := range actions {
		fmt.Fprintf(&b, "\n    # Step %d: %s\n", i+1, stepComment(action))
		b.WriteString("    ")
		b.WriteString(stepCode(i, action))
		b.WriteString("\n")
	}

	b.WriteString("\n    browser.close()\n\n\n")
	b.WriteString("def main():\n")
	b.WriteString("    with sync_playwright() as playwright:\n")
	b.WriteString("        run(playwright)\n\n\n")
	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    main()\n")

	return b.String()
}

func stepComment(action domain.RecordedAction) string {
	if action.Description != "" {
		// Keep the comment single-line whatever the agent reported.
		return strings.ReplaceAll(action.Description, "\n", " ")
	}
	return string(action.Type)
}

func stepCode(index int, action domain.RecordedAction) string {
	switch action.Type {
	case domain.ActionNavigate:
		return fmt.Sprintf("page.goto(%s)", pyString(action.URL))
	case domain.ActionClick:
		if action.Selector != "" {
			return fmt.Sprintf("page.click(%s)", pyString(action.Selector))
		}
		if action.Coordinates != nil {
			return fmt.Sprintf("page.mouse.click(%d, %d)", action.Coordinates.X, action.Coordinates.Y)
		}
		return "page.mouse.click(0, 0)"
	case domain.ActionInput:
		return fmt.Sprintf("page.fill(%s, %s)", pyString(action.Selector), pyString(action.Text))
	case domain.ActionSelect:
		return fmt.Sprintf("page.select_option(%s, %s)", pyString(action.Selector), pyString(action.Value))
	case domain.ActionWait:
		return "page.wait_for_timeout(1000)"
	case domain.ActionScreenshot:
		return fmt.Sprintf("page.screenshot(path=%s)", pyString(fmt.Sprintf("step_%d.png", index+1)))
	case domain.ActionScroll:
		if action.Coordinates != nil {
			return fmt.Sprintf("page.mouse.wheel(%d, %d)", action.Coordinates.X, action.Coordinates.Y)
		}
		return "page.mouse.wheel(0, 600)"
	}
	return fmt.Sprintf("pass  # unsupported action type %q", string(action.Type))
}

// pyString renders a Go string as a Python double-quoted literal. Go's quoting
// escapes are a subset Python accepts unchanged.
func pyString(s string) string {
	return strconv.Quote(s)
}

// loginHints mark selectors or descriptions that suggest an authentication flow.
var loginHints = []string{"login", "log in", "log-in", "sign in", "sign-in", "signin", "password", "auth"}

// formHints mark actions that describe a form submission.
var formHints = []string{"submit", "form"}

// SuggestName proposes a tool name from the action set when the caller
// supplies none. Precedence: login context, then typing/form submission,
// then navigation, then the generic fallback.
func SuggestName(actions []domain.RecordedAction) string {
	hasType := false
	hasNavigate := false
	hasFormHint := false

	for _, action := range actions {
		haystack := strings.ToLower(action.Selector + " " + action.Description)
		for _, hint := range loginHints {
			if strings.Contains(haystack, hint) {
				return "login_automation"
			}
		}
		for _, hint := range formHints {
			if strings.Contains(haystack, hint) {
				hasFormHint = true
			}
		}
		switch action.Type {
		case domain.ActionInput:
			hasType = true
		case domain.ActionNavigate:
			hasNavigate = true
		}
	}

	if hasType || hasFormHint {
		return "form_filler"
	}
	if hasNavigate {
		return "web_navigator"
	}
	return "browser_automation"
}

// ExtractParameters derives the declared parameter list of a generated tool:
// one entry per typed input, in action order.
func ExtractParameters(actions []domain.RecordedAction) []string {
	var params []string
	n := 0
	for _, action := range actions {
		if action.Type != domain.ActionInput {
			continue
		}
		n++
		params = append(params, fmt.Sprintf("text_%d", n))
	}
	return params
}
