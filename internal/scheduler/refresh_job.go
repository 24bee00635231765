package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Loader re-materializes the session data. Implemented by the importer
// service.
type Loader interface {
	Load(ctx context.Context) (domain.SessionInfo, error)
}

// SessionSwapper installs a freshly loaded session handle.
type SessionSwapper interface {
	Swap(info domain.SessionInfo)
}

// RefreshJob reloads the source data on a schedule. The host environment
// decides whether to run it at all (REFRESH_SCHEDULE); a cold start always
// loads regardless.
type RefreshJob struct {
	loader  Loader
	swapper SessionSwapper
	timeout time.Duration
	log     zerolog.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(loader Loader, swapper SessionSwapper, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		loader:  loader,
		swapper: swapper,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "data-refresh"
}

// Run reloads both sources and swaps the session handle. A failed load
// leaves the previous session in place.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	info, err := j.loader.Load(ctx)
	if err != nil {
		return err
	}

	j.swapper.Swap(info)
	return nil
}
