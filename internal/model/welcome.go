package model

import (
	"strings"
	"time"
)

// WelcomeMessage is a templated greeting shown when a chat starts.
// A nil TeamID applies to all teams. StartTime/EndTime, when set, bound the
// time of day ("15:04" format) during which the message is active.
type WelcomeMessage struct {
	ID        string    `json:"id"`
	TeamID    *string   `json:"team_id,omitempty"`
	Template  string    `json:"template"`
	Active    bool      `json:"active"`
	StartTime *string   `json:"start_time,omitempty"`
	EndTime   *string   `json:"end_time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Render resolves the {{name}} placeholder. The substitution happens at
// render time; the stored template is never modified.
func (w *WelcomeMessage) Render(name string) string {
	return strings.ReplaceAll(w.Template, "{{name}}", name)
}

// ActiveAt reports whether the message applies at the given instant,
// honoring the active flag and the optional time-of-day window.
func (w *WelcomeMessage) ActiveAt(t time.Time) bool {
	if !w.Active {
		return false
	}
	if w.StartTime == nil || w.EndTime == nil {
		return true
	}
	start, err := time.Parse("15:04", *w.StartTime)
	if err != nil {
		return true
	}
	end, err := time.Parse("15:04", *w.EndTime)
	if err != nil {
		return true
	}
	minutes := t.Hour()*60 + t.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()
	if startMin <= endMin {
		return minutes >= startMin && minutes <= endMin
	}
	// Window crosses midnight.
	return minutes >= startMin || minutes <= endMin
}

// WelcomeMessageRequest is the request to create or update a welcome message.
type WelcomeMessageRequest struct {
	TeamID    *string `json:"team_id,omitempty"`
	Template  string  `json:"template"`
	Active    bool    `json:"active"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}
