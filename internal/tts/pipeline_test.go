package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/lexicon"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/storage"
)

// stubEngine honours the Engine contract: it writes the text artifact, and
// removes it again when asked to fail.
type stubEngine struct {
	calls    int
	fail     bool
	lastText string
}

func (e *stubEngine) Synthesize(_ context.Context, text, textPath, audioPath string) error {
	e.calls++
	e.lastText = text
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return err
	}
	if e.fail {
		_ = os.Remove(textPath)
		return appErrors.Clone(appErrors.ErrSynthesisFailed, "stub synthesis failure")
	}
	return os.WriteFile(audioPath, []byte("voice"), 0o644)
}

type stubMixer struct {
	calls int
	fail  bool
}

func (m *stubMixer) Mix(_ context.Context, _, _, _, outputPath string) error {
	m.calls++
	if m.fail {
		return appErrors.Clone(appErrors.ErrMixFailed, "stub mix failure")
	}
	return os.WriteFile(outputPath, []byte("mixed"), 0o644)
}

type pipelineFixture struct {
	pipeline *Pipeline
	engine   *stubEngine
	mixer    *stubMixer
	clips    *storage.ClipStore
	dir      string
}

func newPipelineFixture(t *testing.T, withAssets bool) *pipelineFixture {
	t.Helper()
	dir := t.TempDir()
	clips, err := storage.NewClipStore(filepath.Join(dir, "temp"))
	require.NoError(t, err)

	introPath := filepath.Join(dir, "bell-intro.mp3")
	outroPath := filepath.Join(dir, "bell-outro.mp3")
	if withAssets {
		require.NoError(t, os.WriteFile(introPath, []byte("intro"), 0o644))
		require.NoError(t, os.WriteFile(outroPath, []byte("outro"), 0o644))
	}

	engine := &stubEngine{}
	mixer := &stubMixer{}
	pipeline := NewPipeline(lexicon.NewNormalizer(), engine, mixer, clips, introPath, outroPath, zap.NewNop())
	return &pipelineFixture{pipeline: pipeline, engine: engine, mixer: mixer, clips: clips, dir: dir}
}

func TestPipelineRejectsEmptyText(t *testing.T) {
	f := newPipelineFixture(t, true)

	_, err := f.pipeline.Produce(context.Background(), "   ", 100)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyText.Code, appErrors.FromError(err).Code)
	assert.Zero(t, f.engine.calls)
}

func TestPipelineMissingAssetShortCircuitsSynthesis(t *testing.T) {
	f := newPipelineFixture(t, false)

	_, err := f.pipeline.Produce(context.Background(), "Pengumuman penting", 101)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAssetMissing.Code, appErrors.FromError(err).Code)
	assert.Zero(t, f.engine.calls, "synthesis must never start when a jingle asset is absent")
	assert.Zero(t, f.mixer.calls)
}

func TestPipelineNormalizesBeforeSynthesis(t *testing.T) {
	f := newPipelineFixture(t, true)

	name, err := f.pipeline.Produce(context.Background(), "Assalamualaikum, Allah SWT", 102)
	require.NoError(t, err)
	assert.Equal(t, "announcement-102.mp3", name)
	assert.Equal(t, "Assalamu alaikum, Alloh Subhanahu wa Ta'ala", f.engine.lastText)
}

func TestPipelineSuccessRemovesTransients(t *testing.T) {
	f := newPipelineFixture(t, true)

	name, err := f.pipeline.Produce(context.Background(), "Rapat pukul lima sore", 103)
	require.NoError(t, err)

	assert.True(t, f.clips.Exists(name))
	assert.False(t, f.clips.Exists("text-103.txt"))
	assert.False(t, f.clips.Exists("raw-103.mp3"))
}

func TestPipelineSynthesisFailureLeavesNothingBehind(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.engine.fail = true

	_, err := f.pipeline.Produce(context.Background(), "Pengumuman", 104)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSynthesisFailed.Code, appErrors.FromError(err).Code)
	assert.Zero(t, f.mixer.calls)

	assert.False(t, f.clips.Exists("text-104.txt"))
	assert.False(t, f.clips.Exists("raw-104.mp3"))
	assert.False(t, f.clips.Exists("announcement-104.mp3"))
}

func TestPipelineMixFailureRemovesTransients(t *testing.T) {
	f := newPipelineFixture(t, true)
	f.mixer.fail = true

	_, err := f.pipeline.Produce(context.Background(), "Pengumuman", 105)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMixFailed.Code, appErrors.FromError(err).Code)

	assert.False(t, f.clips.Exists("text-105.txt"))
	assert.False(t, f.clips.Exists("raw-105.mp3"))

	_, statErr := os.Stat(f.clips.Path("announcement-105.mp3"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
