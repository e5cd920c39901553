// Package domain defines the core data types for recording sessions and
// generated tools.
package domain

import (
	"time"
)

// SessionStatus describes the lifecycle state of a recording session.
type SessionStatus string

const (
	// StatusRecording means the session is live and accepting actions.
	StatusRecording SessionStatus = "recording"
	// StatusStopped means the session was ended by an explicit stop.
	StatusStopped SessionStatus = "stopped"
	// StatusCompleted means the session was stopped and a tool was generated from it.
	StatusCompleted SessionStatus = "completed"
	// StatusFailed means the session was terminated by a forced reset.
	StatusFailed SessionStatus = "failed"
)

// IsTerminal reports whether the status is a final state.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusStopped || s == StatusCompleted || s == StatusFailed
}

// ActionType identifies the kind of browser interaction an action captures.
type ActionType string

const (
	ActionNavigate   ActionType = "navigate"
	ActionClick      ActionType = "click"
	ActionInput      ActionType = "type"
	ActionSelect     ActionType = "select"
	ActionWait       ActionType = "wait"
	ActionScreenshot ActionType = "screenshot"
	ActionScroll     ActionType = "scroll"
)

// Valid reports whether the action type is one of the known kinds.
func (t ActionType) Valid() bool {
	switch t {
	case ActionNavigate, ActionClick, ActionInput, ActionSelect,
		ActionWait, ActionScreenshot, ActionScroll:
		return true
	}
	return false
}

// Coordinates is a point on the page, used by click and scroll actions.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RecordedAction is a single captured browser interaction.
// Timestamp is epoch milliseconds as reported by the capture agent.
type RecordedAction struct {
	ID          string       `json:"id"`
	Type        ActionType   `json:"type"`
	Timestamp   int64        `json:"timestamp"`
	Description string       `json:"description"`
	URL         string       `json:"url,omitempty"`
	Selector    string       `json:"selector,omitempty"`
	Text        string       `json:"text,omitempty"`
	Value       string       `json:"value,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// BrowserMetadata records which capture agent produced a session.
type BrowserMetadata struct {
	UserAgent        string `json:"userAgent,omitempty"`
	ExtensionVersion string `json:"extensionVersion,omitempty"`
}

// RecordingSession is one bounded recording interval and its ordered action log.
type RecordingSession struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenantId"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Status      SessionStatus    `json:"status"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     time.Time        `json:"endTime,omitzero"`
	Actions     []RecordedAction `json:"actions"`
	Browser     BrowserMetadata  `json:"browser,omitzero"`
}

// Duration returns the recorded interval length. For a live session it is the
// time elapsed since start.
func (s *RecordingSession) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary is the list-view projection of a session, without the action log.
type Summary struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       SessionStatus `json:"status"`
	ActionsCount int           `json:"actionsCount"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime,omitzero"`
	DurationMS   int64         `json:"duration"`
}

// Summarize builds the list-view projection of the session.
func (s *RecordingSession) Summarize() Summary {
	sum := Summary{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Status:       s.Status,
		ActionsCount: len(s.Actions),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
	}
	if !s.EndTime.IsZero() {
		sum.DurationMS = s.EndTime.Sub(s.StartTime).Milliseconds()
	}
	return sum
}
