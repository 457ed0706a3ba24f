package lottery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrCutoffResolution means the root cast creation time could not be read.
	ErrCutoffResolution = errors.New("cutoff resolution failed")
	// ErrUpstreamFetch means the reply pages could not be read.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)

// Source reads the root cast and its direct replies.
type Source interface {
	RootHash() string
	RootCreatedAt(ctx context.Context) (time.Time, error)
	Replies(ctx context.Context) ([]Reply, error)
}

// Pipeline computes a fresh Result from the source on every run.
type Pipeline struct {
	source Source
	logger *zap.Logger
}

// NewPipeline creates a pipeline reading from source.
func NewPipeline(source Source, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{source: source, logger: logger}
}

// Run resolves the cutoff, fetches every reply page and resolves claims.
// No partial result is returned on error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.String("root", p.source.RootHash()))
	started := time.Now()

	created, err := p.source.RootCreatedAt(ctx)
	if err != nil {
		log.Error("Root cast lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCutoffResolution, err)
	}
	cutoff := CutoffFor(created)

	replies, err := p.source.Replies(ctx)
	if err != nil {
		log.Error("Reply fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	res := Resolve(replies, cutoff)
	res.RunID = runID
	res.RootHash = p.source.RootHash()

	log.Info("Resolved claims",
		zap.Time("cutoff", cutoff),
		zap.Int("replies", res.TotalReplies),
		zap.Int("players", res.TotalPlayers()),
		zap.Int("rejected", len(res.Rejected)),
		zap.Duration("took", time.Since(started)))
	return &res, nil
}
