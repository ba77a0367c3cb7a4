package tools

import (
	"context"
)

type typeArgs struct {
	Text         string `json:"text" jsonschema:"description=Text to type at the focused control"`
	UseClipboard bool   `json:"use_clipboard,omitempty" jsonschema:"default=true,description=Paste through the clipboard so any Unicode works. When false keys are typed one by one"`
}

type keyArgs struct {
	Key string `json:"key" jsonschema:"minLength=1,description=Key name such as enter or tab or f5 or a. Case-insensitive"`
}

type hotkeyArgs struct {
	Keys []string `json:"keys" jsonschema:"minItems=1,description=Keys in the order they are held down such as cmd then c"`
}

type typeResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Text    string `json:"text"`
}

type keyResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Key     string `json:"key"`
}

type hotkeyResult struct {
	Success bool     `json:"success"`
	Action  string   `json:"action"`
	Keys    []string `json:"keys"`
}

func (s *Server) registerKeyboardTools() error {
	kb := s.deps.Keyboard

	if err := register(s, toolDef[typeArgs, typeResult]{
		name: "keyboard_type",
		description: "Type text at the current focus. By default the text is pasted through the clipboard " +
			"and the previous clipboard content is restored shortly after.",
		defaults: func() typeArgs { return typeArgs{UseClipboard: true} },
		op: func(ctx context.Context, a typeArgs) (typeResult, error) {
			if a.UseClipboard {
				if _, err := s.deps.Paster.Paste(ctx, a.Text); err != nil {
					return typeResult{}, err
				}
			} else if err := kb.TypeText(ctx, a.Text, s.deps.TypeInterval); err != nil {
				return typeResult{}, err
			}
			return typeResult{Success: true, Action: "type", Text: a.Text}, nil
		},
	}); err != nil {
		return err
	}

	keys := []struct {
		name, action, description string
		do                        func(ctx context.Context, key string) error
	}{
		{"keyboard_press", "press", "Press and release one key: arrows (up, down, left, right), home, end, pageup, pagedown, enter, tab, backspace, delete, escape, space, f1 to f12, letters, digits or a modifier.", kb.Press},
		{"keyboard_key_down", "key_down", "Hold a key down until keyboard_key_up releases it. Useful for modifier-held clicks.", kb.KeyDown},
		{"keyboard_key_up", "key_up", "Release a key held by keyboard_key_down.", kb.KeyUp},
	}
	for _, k := range keys {
		if err := register(s, toolDef[keyArgs, keyResult]{
			name:        k.name,
			description: k.description,
			op: func(ctx context.Context, a keyArgs) (keyResult, error) {
				if err := k.do(ctx, a.Key); err != nil {
					return keyResult{}, err
				}
				return keyResult{Success: true, Action: k.action, Key: a.Key}, nil
			},
		}); err != nil {
			return err
		}
	}

	return register(s, toolDef[hotkeyArgs, hotkeyResult]{
		name:        "keyboard_hotkey",
		description: "Press a shortcut: keys go down in order and come up in reverse, e.g. [\"ctrl\", \"shift\", \"t\"].",
		op: func(ctx context.Context, a hotkeyArgs) (hotkeyResult, error) {
			if err := kb.Hotkey(ctx, a.Keys...); err != nil {
				return hotkeyResult{}, err
			}
			return hotkeyResult{Success: true, Action: "hotkey", Keys: a.Keys}, nil
		},
	})
}
