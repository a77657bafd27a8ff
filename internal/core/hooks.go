package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"penumbra/internal/storage/config"
)

// DefaultHookTimeout bounds a hook script when the config sets none
const DefaultHookTimeout = 60 * time.Second

// HookContext provides environment information for hook scripts
type HookContext struct {
	Collection string
	TargetDir  string
	ModPath    string
	Generation uint64
	HookName   string // e.g., "deploy.before"
}

// HookResult contains the output from running a hook
type HookResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// HookRunner executes hook scripts with timeout and environment
type HookRunner struct {
	timeout time.Duration
}

// NewHookRunner creates a new hook runner with the given timeout
func NewHookRunner(timeout time.Duration) *HookRunner {
	if timeout <= 0 {
		timeout = DefaultHookTimeout
	}
	return &HookRunner{timeout: timeout}
}

// Run executes a hook script and returns its output
func (r *HookRunner) Run(ctx context.Context, scriptPath string, hc HookContext) (*HookResult, error) {
	result := &HookResult{}

	info, err := os.Stat(scriptPath)
	if os.IsNotExist(err) {
		return result, fmt.Errorf("hook script not found: %s", scriptPath)
	}
	if err != nil {
		return result, fmt.Errorf("checking hook script: %w", err)
	}
	if info.Mode()&0111 == 0 {
		return result, fmt.Errorf("hook script not executable: %s", scriptPath)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.WaitDelay = 100 * time.Millisecond
	cmd.Env = append(os.Environ(),
		"PENUMBRA_COLLECTION="+hc.Collection,
		"PENUMBRA_TARGET_DIR="+hc.TargetDir,
		"PENUMBRA_MOD_PATH="+hc.ModPath,
		"PENUMBRA_GENERATION="+strconv.FormatUint(hc.Generation, 10),
		"PENUMBRA_HOOK="+hc.HookName,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return result, fmt.Errorf("hook timed out after %v: %s", r.timeout, scriptPath)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("hook failed with exit code %d: %s", result.ExitCode, scriptPath)
		}
		return result, fmt.Errorf("running hook: %w", err)
	}

	return result, nil
}

// runHook runs script if set. A failing before hook aborts the operation;
// a failing after hook is only logged since the work is already done.
func (s *Service) runHook(ctx context.Context, script string, hc HookContext) error {
	if script == "" {
		return nil
	}
	runner := NewHookRunner(time.Duration(s.config.Hooks.Timeout) * time.Second)
	res, err := runner.Run(ctx, script, hc)
	if err == nil {
		s.log.Debug().Str("hook", hc.HookName).Str("stdout", res.Stdout).Msg("Hook finished")
		return nil
	}
	if res != nil && res.Stderr != "" {
		s.log.Debug().Str("hook", hc.HookName).Str("stderr", res.Stderr).Msg("Hook output")
	}
	return fmt.Errorf("%s hook: %w", hc.HookName, err)
}

func (s *Service) hookContext(name, targetDir string) HookContext {
	return HookContext{
		Collection: s.collection.Name,
		TargetDir:  targetDir,
		ModPath:    s.library.BasePath(),
		Generation: s.cache.Generation(),
		HookName:   name,
	}
}

// hooksFor returns the configured scripts for an operation, none when
// hooks are disabled
func (s *Service) hooksFor(op string) config.HookConfig {
	if s.noHooks {
		return config.HookConfig{}
	}
	switch op {
	case "deploy":
		return s.config.Hooks.Deploy
	case "undeploy":
		return s.config.Hooks.Undeploy
	default:
		return config.HookConfig{}
	}
}
