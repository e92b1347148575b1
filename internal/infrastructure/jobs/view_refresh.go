package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"codemint.backend/internal/domain/entities"
	"codemint.backend/pkg/logger"
)

// galleryReader is the slice of the gallery surface this job exercises.
type galleryReader interface {
	ListProjects(ctx context.Context) ([]entities.ProjectView, error)
	LatestTokens(ctx context.Context) ([]entities.TokenView, error)
}

// ViewRefreshJob periodically walks the landing-page reads so the gateway
// document cache stays warm and first visitors never pay the cold fan-out.
type ViewRefreshJob struct {
	gallery  galleryReader
	interval time.Duration
	stop     chan struct{}
}

func NewViewRefreshJob(gallery galleryReader, interval time.Duration) *ViewRefreshJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ViewRefreshJob{
		gallery:  gallery,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *ViewRefreshJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting view refresh job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "View refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "View refresh job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *ViewRefreshJob) Stop() {
	close(j.stop)
}

func (j *ViewRefreshJob) refresh(ctx context.Context) {
	start := time.Now()

	projects, err := j.gallery.ListProjects(ctx)
	if err != nil {
		logger.Warn(ctx, "View refresh: project walk failed", zap.Error(err))
		return
	}
	tokens, err := j.gallery.LatestTokens(ctx)
	if err != nil {
		logger.Warn(ctx, "View refresh: token walk failed", zap.Error(err))
		return
	}

	logger.Debug(ctx, "View refresh complete",
		zap.Int("projects", len(projects)),
		zap.Int("tokens", len(tokens)),
		zap.Duration("took", time.Since(start)),
	)
}
