package recorder

import (
	"strings"
	"testing"

	"github.com/mymcpme/recorder/internal/domain"
)

func demoActions() []domain.RecordedAction {
	return []domain.RecordedAction{
		{Type: domain.ActionNavigate, Description: "open example", URL: "https://example.com"},
		{Type: domain.ActionClick, Description: "press the button", Selector: "#go"},
		{Type: domain.ActionInput, Description: "enter a query", Selector: "input[name=q]", Text: "hello"},
	}
}

func TestGenerateDeterministic(t *testing.T) {
	actions := demoActions()

	first := Generate(actions, "demo", "a demo tool")
	second := Generate(actions, "demo", "a demo tool")
	if first != second {
		t.Error("Two generations from the same log must be byte-identical")
	}
}

func TestGenerateReferencesAllActionsInOrder(t *testing.T) {
	code := Generate(demoActions(), "demo", "")

	steps := []string{
		`page.goto("https://example.com")`,
		`page.click("#go")`,
		`page.fill("input[name=q]", "hello")`,
	}
	last := -1
	for _, step := range steps {
		idx := strings.Index(code, step)
		if idx < 0 {
			t.Fatalf("Generated code missing step %q:\n%s", step, code)
		}
		if idx < last {
			t.Errorf("Step %q appears out of order", step)
		}
		last = idx
	}

	for _, marker := range []string{"# Step 1:", "# Step 2:", "# Step 3:"} {
		if !strings.Contains(code, marker) {
			t.Errorf("Generated code missing comment %q", marker)
		}
	}
	if strings.Contains(code, "# Step 4:") {
		t.Error("Generated code has more steps than actions")
	}
}

func TestGenerateStepShapes(t *testing.T) {
	tests := []struct {
		name   string
		action domain.RecordedAction
		want   string
	}{
		{"select", domain.RecordedAction{Type: domain.ActionSelect, Selector: "#country", Value: "DE"}, `page.select_option("#country", "DE")`},
		{"wait", domain.RecordedAction{Type: domain.ActionWait}, "page.wait_for_timeout(1000)"},
		{"screenshot", domain.RecordedAction{Type: domain.ActionScreenshot}, `page.screenshot(path="step_1.png")`},
		{"click by coordinates", domain.RecordedAction{Type: domain.ActionClick, Coordinates: &domain.Coordinates{X: 10, Y: 20}}, "page.mouse.click(10, 20)"},
		{"scroll", domain.RecordedAction{Type: domain.ActionScroll, Coordinates: &domain.Coordinates{X: 0, Y: 300}}, "page.mouse.wheel(0, 300)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Generate([]domain.RecordedAction{tt.action}, "t", "")
			if !strings.Contains(code, tt.want) {
				t.Errorf("Expected %q in generated code:\n%s", tt.want, code)
			}
		})
	}
}

func TestGenerateEscapesQuotes(t *testing.T) {
	code := Generate([]domain.RecordedAction{
		{Type: domain.ActionInput, Selector: `input[title="x"]`, Text: `say "hi"`},
	}, "t", "")
	if !strings.Contains(code, `page.fill("input[title=\"x\"]", "say \"hi\"")`) {
		t.Errorf("Quotes not escaped in generated code:\n%s", code)
	}
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		name    string
		actions []domain.RecordedAction
		want    string
	}{
		{
			"password selector wins",
			[]domain.RecordedAction{
				{Type: domain.ActionNavigate, URL: "https://example.com"},
				{Type: domain.ActionInput, Selector: "input[type=password]"},
			},
			"login_automation",
		},
		{
			"sign-in description wins",
			[]domain.RecordedAction{{Type: domain.ActionClick, Description: "Sign in to account"}},
			"login_automation",
		},
		{
			"typing without login context",
			[]domain.RecordedAction{
				{Type: domain.ActionNavigate, URL: "https://example.com"},
				{Type: domain.ActionInput, Selector: "input[name=q]"},
			},
			"form_filler",
		},
		{
			"submit hint without typing",
			[]domain.RecordedAction{{Type: domain.ActionClick, Selector: "button[type=submit]"}},
			"form_filler",
		},
		{
			"navigation only",
			[]domain.RecordedAction{{Type: domain.ActionNavigate, URL: "https://example.com"}},
			"web_navigator",
		},
		{
			"empty log",
			nil,
			"browser_automation",
		},
		{
			"clicks only",
			[]domain.RecordedAction{{Type: domain.ActionClick, Selector: "#a"}},
			"browser_automation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestName(tt.actions); got != tt.want {
				t.Errorf("SuggestName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractParameters(t *testing.T) {
	params := ExtractParameters([]domain.RecordedAction{
		{Type: domain.ActionNavigate},
		{Type: domain.ActionInput, Text: "a"},
		{Type: domain.ActionClick},
		{Type: domain.ActionInput, Text: "b"},
	})
	if len(params) != 2 || params[0] != "text_1" || params[1] != "text_2" {
		t.Errorf("Expected [text_1 text_2], got %v", params)
	}

	if params := ExtractParameters(nil); params != nil {
		t.Errorf("Expected nil for empty log, got %v", params)
	}
}
