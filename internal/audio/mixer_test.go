package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	return path
}

func TestCheckAssetsPresent(t *testing.T) {
	dir := t.TempDir()
	intro := touch(t, dir, "bell-intro.mp3")
	outro := touch(t, dir, "bell-outro.mp3")

	assert.NoError(t, CheckAssets(intro, outro))
}

func TestCheckAssetsMissingOutro(t *testing.T) {
	dir := t.TempDir()
	intro := touch(t, dir, "bell-intro.mp3")

	err := CheckAssets(intro, filepath.Join(dir, "bell-outro.mp3"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAssetMissing.Code, appErrors.FromError(err).Code)
}

func TestMixFilterGraphIsFixed(t *testing.T) {
	assert.Equal(t,
		"[1:a]volume=4.0[voice_loud];[0:a]volume=0.7[intro];[2:a]volume=0.7[outro];[intro][voice_loud][outro]concat=n=3:v=0:a=1[out]",
		mixFilter())
}

func TestMixArgsInputOrder(t *testing.T) {
	args := mixArgs("bell-intro.mp3", "raw-42.mp3", "bell-outro.mp3", "announcement-42.mp3")

	assert.Equal(t, []string{
		"-y",
		"-i", "bell-intro.mp3",
		"-i", "raw-42.mp3",
		"-i", "bell-outro.mp3",
		"-filter_complex", mixFilter(),
		"-map", "[out]",
		"announcement-42.mp3",
	}, args)
}

func TestMixMissingAssetFailsBeforeEncoding(t *testing.T) {
	dir := t.TempDir()
	voice := touch(t, dir, "raw-123.mp3")
	mixer := NewFFmpegMixer("ffmpeg-does-not-exist", time.Second, zap.NewNop())

	err := mixer.Mix(context.Background(),
		filepath.Join(dir, "missing-intro.mp3"), voice,
		filepath.Join(dir, "missing-outro.mp3"),
		filepath.Join(dir, "out.mp3"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAssetMissing.Code, appErrors.FromError(err).Code)
}

func TestMixEncodeFailureLeavesNoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	intro := touch(t, dir, "bell-intro.mp3")
	outro := touch(t, dir, "bell-outro.mp3")
	voice := touch(t, dir, "raw-123.mp3")
	outputPath := filepath.Join(dir, "announcement-123.mp3")

	mixer := NewFFmpegMixer("ffmpeg-does-not-exist", time.Second, zap.NewNop())
	err := mixer.Mix(context.Background(), intro, voice, outro, outputPath)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMixFailed.Code, appErrors.FromError(err).Code)

	_, statErr := os.Stat(outputPath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
