// Package audio produces the final announcement clip: a fixed intro jingle,
// the synthesized voice and a fixed outro jingle concatenated into one
// continuous stream.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

// Gain values are part of the external contract: every clip produced by the
// installation must sound the same. Voice is boosted, jingles attenuated.
const (
	VoiceGain  = "4.0"
	JingleGain = "0.7"
)

// Mixer concatenates intro + voice + outro into outputPath.
type Mixer interface {
	Mix(ctx context.Context, introPath, voicePath, outroPath, outputPath string) error
}

// CheckAssets verifies the fixed jingle assets exist before any synthesis
// work is spent on a doomed mix.
func CheckAssets(introPath, outroPath string) error {
	for _, path := range []string{introPath, outroPath} {
		if _, err := os.Stat(path); err != nil {
			return appErrors.Wrap(err, appErrors.ErrAssetMissing.Code, appErrors.ErrAssetMissing.Status,
				fmt.Sprintf("jingle asset missing: %s", path))
		}
	}
	return nil
}

// FFmpegMixer shells out to ffmpeg with the fixed three-track filter graph.
type FFmpegMixer struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewFFmpegMixer builds a mixer around the given ffmpeg binary.
func NewFFmpegMixer(binary string, timeout time.Duration, logger *zap.Logger) *FFmpegMixer {
	if binary == "" {
		binary = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegMixer{binary: binary, timeout: timeout, logger: logger}
}

// mixFilter is the fixed three-track filter graph: input 0 is the intro,
// input 1 the voice, input 2 the outro, concatenated in intro/voice/outro
// order into a single audio stream.
func mixFilter() string {
	return fmt.Sprintf(
		"[1:a]volume=%s[voice_loud];[0:a]volume=%s[intro];[2:a]volume=%s[outro];[intro][voice_loud][outro]concat=n=3:v=0:a=1[out]",
		VoiceGain, JingleGain, JingleGain,
	)
}

// mixArgs builds the full ffmpeg argument list for one mix invocation.
func mixArgs(introPath, voicePath, outroPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", introPath,
		"-i", voicePath,
		"-i", outroPath,
		"-filter_complex", mixFilter(),
		"-map", "[out]",
		outputPath,
	}
}

// Mix runs the concat filter: intro at 0.7x, voice at 4.0x, outro at 0.7x,
// joined in that order with no gaps. No partial output file survives a
// failed encode.
func (m *FFmpegMixer) Mix(ctx context.Context, introPath, voicePath, outroPath, outputPath string) error {
	if err := CheckAssets(introPath, outroPath); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	// #nosec G204 -- paths come from configuration and generated filenames
	cmd := exec.CommandContext(runCtx, m.binary, mixArgs(introPath, voicePath, outroPath, outputPath)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if removeErr := os.Remove(outputPath); removeErr != nil && !os.IsNotExist(removeErr) {
			m.logger.Warn("failed to remove partial mix output",
				zap.String("path", outputPath), zap.Error(removeErr))
		}
		return appErrors.Wrap(
			fmt.Errorf("ffmpeg: %w: %s", err, string(output)),
			appErrors.ErrMixFailed.Code, appErrors.ErrMixFailed.Status, "audio mixing failed",
		)
	}

	m.logger.Info("mixed announcement clip",
		zap.String("output", outputPath),
		zap.String("voice", voicePath))
	return nil
}
