package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/haasonsaas/cu-mcp/internal/capture"
)

// Resource URIs.
const (
	ScreenshotURI = "screen://screenshot"
	ScreenInfoURI = "screen://info"
	StatusURI     = "info://status"
)

type screenInfoResource struct {
	ScreenWidth  int `json:"screen_width"`
	ScreenHeight int `json:"screen_height"`
	CursorX      int `json:"cursor_x"`
	CursorY      int `json:"cursor_y"`
}

func (s *Server) registerResources() {
	s.srv.AddResource(&mcp.Resource{
		URI:         ScreenshotURI,
		Name:        "screenshot",
		Description: "Live PNG screenshot of the entire desktop.",
		MIMEType:    capture.MIMEType,
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		res, err := s.deps.Screen.Capture(ctx, nil)
		if err != nil {
			s.log.Warn("screenshot resource failed", "error", err)
			return nil, err
		}
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{{
			URI:      ScreenshotURI,
			MIMEType: capture.MIMEType,
			Blob:     res.PNG,
		}}}, nil
	})

	s.srv.AddResource(&mcp.Resource{
		URI:         ScreenInfoURI,
		Name:        "screen-info",
		Description: "Screen size and pointer position as JSON.",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		info, err := s.screenInfo(ctx, noArgs{})
		if err != nil {
			s.log.Warn("screen info resource failed", "error", err)
			return nil, err
		}
		data, err := json.Marshal(screenInfoResource{
			ScreenWidth:  info.ScreenWidth,
			ScreenHeight: info.ScreenHeight,
			CursorX:      info.CursorX,
			CursorY:      info.CursorY,
		})
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{{
			URI:      ScreenInfoURI,
			MIMEType: "application/json",
			Text:     string(data),
		}}}, nil
	})

	s.srv.AddResource(&mcp.Resource{
		URI:         StatusURI,
		Name:        "status",
		Description: "Server health check.",
		MIMEType:    "text/plain",
	}, func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{{
			URI:      StatusURI,
			MIMEType: "text/plain",
			Text:     "running",
		}}}, nil
	})
}
