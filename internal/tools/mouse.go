package tools

import (
	"context"

	"github.com/haasonsaas/cu-mcp/internal/input"
)

type mouseMoveArgs struct {
	X        int     `json:"x" jsonschema:"description=Target X coordinate in screen pixels from the left edge"`
	Y        int     `json:"y" jsonschema:"description=Target Y coordinate in screen pixels from the top edge"`
	Duration float64 `json:"duration,omitempty" jsonschema:"minimum=0,maximum=10,default=0.25,description=Movement animation time in seconds"`
}

type clickArgs struct {
	X        int     `json:"x" jsonschema:"description=Target X coordinate"`
	Y        int     `json:"y" jsonschema:"description=Target Y coordinate"`
	Duration float64 `json:"duration,omitempty" jsonschema:"minimum=0,maximum=10,default=0.2,description=Movement animation time in seconds"`
}

type scrollArgs struct {
	X       int `json:"x" jsonschema:"description=X coordinate to scroll at"`
	Y       int `json:"y" jsonschema:"description=Y coordinate to scroll at"`
	ScrollY int `json:"scroll_y,omitempty" jsonschema:"default=3,description=Vertical amount. Positive scrolls up and negative scrolls down"`
	ScrollX int `json:"scroll_x,omitempty" jsonschema:"default=0,description=Horizontal amount. Positive scrolls right and negative scrolls left"`
}

type dragArgs struct {
	StartX   int     `json:"start_x" jsonschema:"description=Starting X coordinate"`
	StartY   int     `json:"start_y" jsonschema:"description=Starting Y coordinate"`
	EndX     int     `json:"end_x" jsonschema:"description=Ending X coordinate"`
	EndY     int     `json:"end_y" jsonschema:"description=Ending Y coordinate"`
	Duration float64 `json:"duration,omitempty" jsonschema:"minimum=0,maximum=30,default=0.5,description=Drag animation time in seconds"`
	Button   string  `json:"button,omitempty" jsonschema:"enum=left,enum=right,enum=middle,default=left,description=Mouse button held during the drag"`
}

type clickResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

type scrollResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	ScrollY int    `json:"scroll_y"`
	ScrollX int    `json:"scroll_x"`
}

type dragResult struct {
	Success bool        `json:"success"`
	Action  string      `json:"action"`
	From    input.Point `json:"from"`
	To      input.Point `json:"to"`
	Button  string      `json:"button"`
}

func (s *Server) registerMouseTools() error {
	p := s.deps.Pointer

	if err := register(s, toolDef[mouseMoveArgs, positionResult]{
		name:        "mouse_move",
		description: "Move the pointer to (x, y) without clicking and report where it ended up.",
		defaults:    func() mouseMoveArgs { return mouseMoveArgs{Duration: 0.25} },
		op: func(ctx context.Context, a mouseMoveArgs) (positionResult, error) {
			at, err := p.MoveTo(ctx, a.X, a.Y, seconds(a.Duration))
			if err != nil {
				return positionResult{}, err
			}
			return positionResult{Success: true, X: at.X, Y: at.Y}, nil
		},
	}); err != nil {
		return err
	}

	clicks := []struct {
		name, action, description string
		click                     func(ctx context.Context, a clickArgs) error
	}{
		{"mouse_left_click", "left_click", "Move to (x, y) and click the primary button.",
			func(ctx context.Context, a clickArgs) error {
				return p.ClickAt(ctx, a.X, a.Y, input.ButtonLeft, seconds(a.Duration))
			}},
		{"mouse_right_click", "right_click", "Move to (x, y) and click the secondary button, usually opening a context menu.",
			func(ctx context.Context, a clickArgs) error {
				return p.ClickAt(ctx, a.X, a.Y, input.ButtonRight, seconds(a.Duration))
			}},
		{"mouse_double_click", "double_click", "Move to (x, y) and double-click the primary button.",
			func(ctx context.Context, a clickArgs) error {
				return p.DoubleClickAt(ctx, a.X, a.Y, seconds(a.Duration))
			}},
	}
	for _, c := range clicks {
		if err := register(s, toolDef[clickArgs, clickResult]{
			name:        c.name,
			description: c.description,
			defaults:    func() clickArgs { return clickArgs{Duration: 0.2} },
			op: func(ctx context.Context, a clickArgs) (clickResult, error) {
				if err := c.click(ctx, a); err != nil {
					return clickResult{}, err
				}
				return clickResult{Success: true, Action: c.action, X: a.X, Y: a.Y}, nil
			},
		}); err != nil {
			return err
		}
	}

	if err := register(s, toolDef[scrollArgs, scrollResult]{
		name:        "mouse_scroll",
		description: "Scroll at (x, y). Positive scroll_y scrolls up and positive scroll_x scrolls right.",
		defaults:    func() scrollArgs { return scrollArgs{ScrollY: 3} },
		op: func(ctx context.Context, a scrollArgs) (scrollResult, error) {
			if err := p.ScrollAt(ctx, a.X, a.Y, a.ScrollY, a.ScrollX); err != nil {
				return scrollResult{}, err
			}
			return scrollResult{Success: true, Action: "scroll", X: a.X, Y: a.Y, ScrollY: a.ScrollY, ScrollX: a.ScrollX}, nil
		},
	}); err != nil {
		return err
	}

	return register(s, toolDef[dragArgs, dragResult]{
		name:        "mouse_drag",
		description: "Press a button at the start point and drag to the end point. Use it to move files, resize windows or select text.",
		defaults:    func() dragArgs { return dragArgs{Duration: 0.5, Button: input.ButtonLeft} },
		op: func(ctx context.Context, a dragArgs) (dragResult, error) {
			from := input.Point{X: a.StartX, Y: a.StartY}
			to := input.Point{X: a.EndX, Y: a.EndY}
			if err := p.Drag(ctx, from, to, seconds(a.Duration), a.Button); err != nil {
				return dragResult{}, err
			}
			return dragResult{Success: true, Action: "drag", From: from, To: to, Button: a.Button}, nil
		},
	})
}
