package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrEngineUnavailable = errors.New("statistical engine is not available")
	ErrScriptFailed      = errors.New("statistical engine raised an error")
)

// Runner executes a script in the statistical engine passing it the input document and
// returning the output document the script produced.
type Runner interface {
	Run(ctx context.Context, script, input []byte) ([]byte, error)
}

// ScriptError is returned when the engine ran but the script exited unsuccessfully
type ScriptError struct {
	ExitCode int
	Message  string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return ErrScriptFailed
}

// Rscript runs scripts with the Rscript front end of an R installation. Each run gets its own
// temporary directory holding the script, input and output documents.
type Rscript struct {
	Path string
}

// NewRscript returns a runner using the Rscript binary at path. An empty path looks up Rscript
// on PATH.
func NewRscript(path string) *Rscript {
	if path == "" {
		path = DefaultRscriptPath
	}
	return &Rscript{Path: path}
}

func (r *Rscript) Run(ctx context.Context, script, input []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "rforecaster-*")
	if err != nil {
		return nil, fmt.Errorf("unable to create engine workspace, %w", err)
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "script.R")
	inputPath := filepath.Join(dir, "input.json")
	outputPath := filepath.Join(dir, "output.json")

	if err := os.WriteFile(scriptPath, script, 0o600); err != nil {
		return nil, fmt.Errorf("unable to write engine script, %w", err)
	}
	if err := os.WriteFile(inputPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("unable to write engine input, %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, "--vanilla", scriptPath, inputPath, outputPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s, %w", r.Path, ErrEngineUnavailable)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ScriptError{
				ExitCode: exitErr.ExitCode(),
				Message:  scriptMessage(stderr.String()),
			}
		}
		return nil, err
	}

	return os.ReadFile(outputPath)
}

// scriptMessage trims the engine's stderr down to the error it raised, dropping any
// warnings or startup chatter printed before it.
func scriptMessage(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if idx := strings.Index(stderr, "Error"); idx >= 0 {
		stderr = stderr[idx:]
	}
	if idx := strings.Index(stderr, "\nExecution halted"); idx >= 0 {
		stderr = stderr[:idx]
	}
	return strings.TrimSpace(stderr)
}
