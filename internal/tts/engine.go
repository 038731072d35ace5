// Package tts drives the announcement production pipeline: normalized text
// goes in, a mixed announcement clip comes out.
package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

// Engine is the external speech-synthesis capability. Given normalized text
// it writes the transient text artifact at textPath, then produces a voice
// clip at audioPath or fails. On failure the text artifact must not survive;
// on success it remains for the pipeline to clean up.
type Engine interface {
	Synthesize(ctx context.Context, text, textPath, audioPath string) error
}

// ExternalEngine invokes the synthesis command out of process:
// <command> <script> <textPath> <audioPath>. The call takes seconds; the
// timeout turns a hung engine into a synthesis failure.
type ExternalEngine struct {
	command string
	script  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewExternalEngine builds the engine around the configured command.
func NewExternalEngine(command, script string, timeout time.Duration, logger *zap.Logger) *ExternalEngine {
	if command == "" {
		command = "python3"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExternalEngine{command: command, script: script, timeout: timeout, logger: logger}
}

// Synthesize writes the text artifact and runs the external engine.
func (e *ExternalEngine) Synthesize(ctx context.Context, text, textPath, audioPath string) error {
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return appErrors.Wrap(err, appErrors.ErrArtifactWrite.Code, appErrors.ErrArtifactWrite.Status,
			"failed to write synthesis text artifact")
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{textPath, audioPath}
	if e.script != "" {
		args = append([]string{e.script}, args...)
	}
	// #nosec G204 -- command and script come from configuration
	cmd := exec.CommandContext(runCtx, e.command, args...)

	output, err := cmd.CombinedOutput()
	if err == nil {
		if _, statErr := os.Stat(audioPath); statErr == nil {
			return nil
		}
		err = fmt.Errorf("engine exited cleanly but produced no output at %s", audioPath)
	}

	// The failure path must not orphan the text artifact.
	if removeErr := os.Remove(textPath); removeErr != nil && !os.IsNotExist(removeErr) {
		e.logger.Warn("failed to remove text artifact after synthesis failure",
			zap.String("path", textPath), zap.Error(removeErr))
	}

	return appErrors.Wrap(
		fmt.Errorf("%s: %w: %s", e.command, err, string(output)),
		appErrors.ErrSynthesisFailed.Code, appErrors.ErrSynthesisFailed.Status, "speech synthesis failed",
	)
}
