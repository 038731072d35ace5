package tts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake_engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExternalEngineSuccessKeepsTextArtifact(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `cp "$1" "$2"`)
	engine := NewExternalEngine("sh", script, 10*time.Second, zap.NewNop())

	textPath := filepath.Join(dir, "text-1.txt")
	audioPath := filepath.Join(dir, "raw-1.mp3")

	err := engine.Synthesize(context.Background(), "Assalamu alaikum", textPath, audioPath)
	require.NoError(t, err)

	content, readErr := os.ReadFile(textPath)
	require.NoError(t, readErr)
	assert.Equal(t, "Assalamu alaikum", string(content))

	_, statErr := os.Stat(audioPath)
	assert.NoError(t, statErr)
}

func TestExternalEngineFailureRemovesTextArtifact(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `echo "engine blew up" >&2; exit 1`)
	engine := NewExternalEngine("sh", script, 10*time.Second, zap.NewNop())

	textPath := filepath.Join(dir, "text-2.txt")
	audioPath := filepath.Join(dir, "raw-2.mp3")

	err := engine.Synthesize(context.Background(), "teks", textPath, audioPath)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSynthesisFailed.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "engine blew up")

	_, statErr := os.Stat(textPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExternalEngineNoOutputIsFailure(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `exit 0`)
	engine := NewExternalEngine("sh", script, 10*time.Second, zap.NewNop())

	textPath := filepath.Join(dir, "text-3.txt")
	audioPath := filepath.Join(dir, "raw-3.mp3")

	err := engine.Synthesize(context.Background(), "teks", textPath, audioPath)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSynthesisFailed.Code, appErrors.FromError(err).Code)

	_, statErr := os.Stat(textPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExternalEngineArtifactWriteFailureSkipsInvocation(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "invoked")
	script := writeScript(t, dir, `touch `+marker)
	engine := NewExternalEngine("sh", script, 10*time.Second, zap.NewNop())

	textPath := filepath.Join(dir, "no-such-subdir", "text-4.txt")
	audioPath := filepath.Join(dir, "raw-4.mp3")

	err := engine.Synthesize(context.Background(), "teks", textPath, audioPath)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrArtifactWrite.Code, appErrors.FromError(err).Code)

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "engine must not be invoked after artifact write failure")
}
