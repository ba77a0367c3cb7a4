package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const describeScreenPrompt = "Capture the screen with take_screenshot and describe what is visible: " +
	"open windows and applications, readable text, interactive controls and how the layout is arranged."

const automateTaskPrompt = `Carry out this task on the computer:

%s

Work in a loop:
1. Take a screenshot to see where things stand.
2. Decide on the next action needed.
3. Act with the mouse, keyboard or shell tools.
4. Take another screenshot to confirm the action had the expected effect.
Stop once the screenshot shows the task is done. Move carefully and verify each step.`

func (s *Server) registerPrompts() {
	s.srv.AddPrompt(&mcp.Prompt{
		Name:        "describe_screen",
		Description: "Capture and describe the current screen.",
	}, func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return userPrompt("Describe the current screen", describeScreenPrompt), nil
	})

	s.srv.AddPrompt(&mcp.Prompt{
		Name:        "automate_task",
		Description: "Guide an agent through automating a desktop task end to end.",
		Arguments: []*mcp.PromptArgument{{
			Name:        "task",
			Description: "What to accomplish, in plain language.",
			Required:    true,
		}},
	}, func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var task string
		if req != nil && req.Params != nil {
			task = strings.TrimSpace(req.Params.Arguments["task"])
		}
		if task == "" {
			return nil, errors.New("automate_task: task argument is required")
		}
		return userPrompt("Automate a desktop task", fmt.Sprintf(automateTaskPrompt, task)), nil
	})
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}
}
