package input

import (
	"errors"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Command":  "cmd",
		"win":      "cmd",
		"SUPER":    "cmd",
		"meta":     "cmd",
		"return":   "enter",
		"Option":   "alt",
		"control":  "ctrl",
		"Escape":   "esc",
		"del":      "delete",
		" Tab ":    "tab",
		"F5":       "f5",
		"A":        "A",
		"a":        "a",
		"é":        "é",
		"":         "",
		"PageDown": "pagedown",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeButton(t *testing.T) {
	for in, want := range map[string]string{"": "left", "Left": "left", "right": "right", "center": "middle", "MIDDLE": "middle"} {
		got, err := NormalizeButton(in)
		if err != nil || got != want {
			t.Errorf("NormalizeButton(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := NormalizeButton("x1"); !errors.Is(err, ErrUnknownButton) {
		t.Errorf("error = %v", err)
	}
}
