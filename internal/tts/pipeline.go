package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/audio"
	"github.com/aslabkom/announcer-api/internal/lexicon"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/storage"
)

// Artifact naming is a wire contract: player clients resolve clip URLs by
// convention, so the prefixes and extensions must not drift.
const (
	textArtifactPattern  = "text-%d.txt"
	rawArtifactPattern   = "raw-%d.mp3"
	finalArtifactPattern = "announcement-%d.mp3"
)

// FinalClipName returns the published filename for an announcement id.
func FinalClipName(id int64) string {
	return fmt.Sprintf(finalArtifactPattern, id)
}

// Pipeline turns operator text into a mixed announcement clip. Each run owns
// its transient artifacts (named by the run's unique id), so concurrent runs
// never collide.
type Pipeline struct {
	normalizer *lexicon.Normalizer
	engine     Engine
	mixer      audio.Mixer
	clips      *storage.ClipStore
	introPath  string
	outroPath  string
	logger     *zap.Logger
}

// NewPipeline wires the production stages together.
func NewPipeline(
	normalizer *lexicon.Normalizer,
	engine Engine,
	mixer audio.Mixer,
	clips *storage.ClipStore,
	introPath, outroPath string,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		normalizer: normalizer,
		engine:     engine,
		mixer:      mixer,
		clips:      clips,
		introPath:  introPath,
		outroPath:  outroPath,
		logger:     logger,
	}
}

// CheckAssets verifies the fixed jingles are in place. Callers use it to
// fail fast before queueing a run.
func (p *Pipeline) CheckAssets() error {
	return audio.CheckAssets(p.introPath, p.outroPath)
}

// Produce runs the full pipeline for one announcement id and returns the
// final clip filename. Stages run sequentially: text artifact written,
// synthesis invoked, mix invoked. Transient artifacts are removed on both
// the success and failure paths; cleanup failures are logged, never
// escalated, so they cannot mask a pipeline error.
func (p *Pipeline) Produce(ctx context.Context, text string, id int64) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", appErrors.ErrEmptyText
	}
	if err := p.CheckAssets(); err != nil {
		return "", err
	}

	normalized := p.normalizer.Normalize(text)

	textName := fmt.Sprintf(textArtifactPattern, id)
	rawName := fmt.Sprintf(rawArtifactPattern, id)
	finalName := FinalClipName(id)

	textPath := p.clips.Path(textName)
	rawPath := p.clips.Path(rawName)
	finalPath := p.clips.Path(finalName)

	// The engine owns the text artifact on its failure path; on success it
	// is still on disk for this run to remove.
	if err := p.engine.Synthesize(ctx, normalized, textPath, rawPath); err != nil {
		return "", err
	}

	if err := p.mixer.Mix(ctx, p.introPath, rawPath, p.outroPath, finalPath); err != nil {
		p.removeTransient(textName)
		p.removeTransient(rawName)
		return "", err
	}

	p.removeTransient(textName)
	p.removeTransient(rawName)

	p.logger.Info("announcement clip produced",
		zap.Int64("id", id),
		zap.String("clip", finalName))
	return finalName, nil
}

func (p *Pipeline) removeTransient(name string) {
	if err := p.clips.Delete(name); err != nil {
		p.logger.Warn("failed to remove transient artifact", zap.String("artifact", name), zap.Error(err))
	}
}
