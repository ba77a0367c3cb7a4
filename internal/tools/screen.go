package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/haasonsaas/cu-mcp/internal/capture"
)

type noArgs struct{}

type screenshotMetadata struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	ScreenWidth  int     `json:"screen_width"`
	ScreenHeight int     `json:"screen_height"`
	ImageWidth   int     `json:"image_width"`
	ImageHeight  int     `json:"image_height"`
	ScaleX       float64 `json:"scale_x"`
	ScaleY       float64 `json:"scale_y"`
	MIMEType     string  `json:"mime_type"`
}

type screenInfoResult struct {
	Success      bool `json:"success"`
	ScreenWidth  int  `json:"screen_width"`
	ScreenHeight int  `json:"screen_height"`
	CursorX      int  `json:"cursor_x"`
	CursorY      int  `json:"cursor_y"`
}

type positionResult struct {
	Success bool `json:"success"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
}

type windowResult struct {
	Success     bool   `json:"success"`
	AppName     string `json:"app_name"`
	WindowTitle string `json:"window_title"`
}

func (s *Server) registerScreenTools() error {
	if err := register(s, toolDef[noArgs, *capture.Result]{
		name: "take_screenshot",
		description: "Capture the whole desktop as a PNG image. Call this before acting to see the current state. " +
			"The accompanying metadata gives the logical screen size used by mouse coordinates " +
			"and scale_x/scale_y to convert image pixels into screen coordinates.",
		op: func(ctx context.Context, _ noArgs) (*capture.Result, error) {
			return s.deps.Screen.Capture(ctx, nil)
		},
		render: screenshotContent,
	}); err != nil {
		return err
	}

	if err := register(s, toolDef[noArgs, screenInfoResult]{
		name:        "get_screen_info",
		description: "Report the logical screen size and the current pointer position.",
		op:          s.screenInfo,
	}); err != nil {
		return err
	}

	if err := register(s, toolDef[noArgs, positionResult]{
		name:        "get_cursor_position",
		description: "Report the current pointer position in screen coordinates.",
		op: func(ctx context.Context, _ noArgs) (positionResult, error) {
			p, err := s.deps.Pointer.Location(ctx)
			if err != nil {
				return positionResult{}, err
			}
			return positionResult{Success: true, X: p.X, Y: p.Y}, nil
		},
	}); err != nil {
		return err
	}

	return register(s, toolDef[noArgs, windowResult]{
		name:        "get_active_window_info",
		description: "Report the frontmost application and the title of its focused window. The title may be empty.",
		op: func(ctx context.Context, _ noArgs) (windowResult, error) {
			info, err := s.deps.Window.Active(ctx)
			if err != nil {
				return windowResult{}, err
			}
			return windowResult{Success: true, AppName: info.AppName, WindowTitle: info.WindowTitle}, nil
		},
	})
}

func (s *Server) screenInfo(ctx context.Context, _ noArgs) (screenInfoResult, error) {
	w, h, err := s.deps.Pointer.ScreenSize()
	if err != nil {
		return screenInfoResult{}, err
	}
	p, err := s.deps.Pointer.Location(ctx)
	if err != nil {
		return screenInfoResult{}, err
	}
	return screenInfoResult{Success: true, ScreenWidth: w, ScreenHeight: h, CursorX: p.X, CursorY: p.Y}, nil
}

func screenshotContent(res *capture.Result) ([]mcp.Content, error) {
	if res == nil {
		return nil, fmt.Errorf("no capture result")
	}
	meta, err := json.Marshal(screenshotMetadata{
		Width:        res.Logical.Width,
		Height:       res.Logical.Height,
		ScreenWidth:  res.Logical.Width,
		ScreenHeight: res.Logical.Height,
		ImageWidth:   res.ImageWidth,
		ImageHeight:  res.ImageHeight,
		ScaleX:       res.ScaleX,
		ScaleY:       res.ScaleY,
		MIMEType:     capture.MIMEType,
	})
	if err != nil {
		return nil, err
	}
	return []mcp.Content{
		&mcp.ImageContent{Data: res.PNG, MIMEType: capture.MIMEType},
		&mcp.TextContent{Text: string(meta)},
	}, nil
}
