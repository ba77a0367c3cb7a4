package input

import "strings"

var keyAliases = map[string]string{
	"command":  "cmd",
	"win":      "cmd",
	"super":    "cmd",
	"meta":     "cmd",
	"return":   "enter",
	"option":   "alt",
	"control":  "ctrl",
	"escape":   "esc",
	"del":      "delete",
	"spacebar": "space",
	"pgup":     "pageup",
	"pgdn":     "pagedown",
}

// NormalizeKey trims a key name, lower-cases multi-character names and maps
// common aliases onto the names the driver understands. Single characters
// keep their case so "A" still types a capital letter.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if len([]rune(key)) <= 1 {
		return key
	}
	key = strings.ToLower(key)
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}

// NormalizeButton lower-cases a mouse button name; "center" is accepted for
// the middle button and an empty name means left.
func NormalizeButton(button string) (string, error) {
	switch b := strings.ToLower(strings.TrimSpace(button)); b {
	case "", ButtonLeft:
		return ButtonLeft, nil
	case ButtonRight:
		return ButtonRight, nil
	case ButtonMiddle, "center":
		return ButtonMiddle, nil
	default:
		return "", &buttonError{button: button}
	}
}

type buttonError struct{ button string }

func (e *buttonError) Error() string { return ErrUnknownButton.Error() + ": " + e.button }
func (e *buttonError) Unwrap() error { return ErrUnknownButton }
