package tools

import (
	"context"
	"time"
)

type shellArgs struct {
	Command string `json:"command" jsonschema:"minLength=1,description=Command line run through the configured shell"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"minimum=1,maximum=3600,default=30,description=Maximum runtime in seconds"`
}

type shellResult struct {
	Success    bool   `json:"success"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ReturnCode int    `json:"return_code"`
}

func (s *Server) registerShellTools() error {
	return register(s, toolDef[shellArgs, shellResult]{
		name: "run_shell_command",
		description: "Run a non-interactive shell command and return its stdout, stderr and exit code. " +
			"Output is capped and the command is killed when the timeout elapses. Avoid destructive commands.",
		defaults: func() shellArgs { return shellArgs{Timeout: 30} },
		op: func(ctx context.Context, a shellArgs) (shellResult, error) {
			res, err := s.deps.Shell.Run(ctx, a.Command, time.Duration(a.Timeout)*time.Second)
			if err != nil {
				return shellResult{}, err
			}
			return shellResult{Success: true, Stdout: res.Stdout, Stderr: res.Stderr, ReturnCode: res.ReturnCode}, nil
		},
	})
}
