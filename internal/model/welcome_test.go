package model

import (
	"testing"
	"time"
)

func TestRenderReplacesNamePlaceholder(t *testing.T) {
	w := &WelcomeMessage{Template: "Olá {{name}}! {{name}}, tudo bem?"}
	got := w.Render("Ana")
	if got != "Olá Ana! Ana, tudo bem?" {
		t.Fatalf("render = %q", got)
	}

	w = &WelcomeMessage{Template: "sem placeholder"}
	if got := w.Render("Ana"); got != "sem placeholder" {
		t.Fatalf("render = %q", got)
	}
}

func strp(s string) *string { return &s }

func TestActiveAt(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		msg  WelcomeMessage
		t    time.Time
		want bool
	}{
		{"inactive flag wins", WelcomeMessage{Active: false}, at(10, 0), false},
		{"no window always active", WelcomeMessage{Active: true}, at(3, 0), true},
		{"inside window", WelcomeMessage{Active: true, StartTime: strp("09:00"), EndTime: strp("18:00")}, at(12, 0), true},
		{"window boundary start", WelcomeMessage{Active: true, StartTime: strp("09:00"), EndTime: strp("18:00")}, at(9, 0), true},
		{"before window", WelcomeMessage{Active: true, StartTime: strp("09:00"), EndTime: strp("18:00")}, at(8, 59), false},
		{"after window", WelcomeMessage{Active: true, StartTime: strp("09:00"), EndTime: strp("18:00")}, at(18, 1), false},
		{"midnight crossing late", WelcomeMessage{Active: true, StartTime: strp("22:00"), EndTime: strp("06:00")}, at(23, 30), true},
		{"midnight crossing early", WelcomeMessage{Active: true, StartTime: strp("22:00"), EndTime: strp("06:00")}, at(5, 0), true},
		{"midnight crossing midday", WelcomeMessage{Active: true, StartTime: strp("22:00"), EndTime: strp("06:00")}, at(12, 0), false},
		{"bad start time ignored", WelcomeMessage{Active: true, StartTime: strp("nope"), EndTime: strp("18:00")}, at(23, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.ActiveAt(tt.t); got != tt.want {
				t.Fatalf("ActiveAt = %v, want %v", got, tt.want)
			}
		})
	}
}
