package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Job is a unit of periodic maintenance work.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// Sweeper drops cached sessions whose access token has expired.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionSweepJob evicts expired entries from the in-memory session store.
type SessionSweepJob struct {
	sessions Sweeper
	now      func() time.Time
}

func NewSessionSweepJob(sessions Sweeper) *SessionSweepJob {
	return &SessionSweepJob{sessions: sessions, now: time.Now}
}

func (j *SessionSweepJob) Name() string { return "session_sweep" }

func (j *SessionSweepJob) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.sessions.Sweep(j.now())
	return nil
}

// Purger deletes refresh sessions that can no longer be used.
type Purger interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ExpiredSessionsJob purges expired or revoked refresh sessions from the
// identity store.
type ExpiredSessionsJob struct {
	store Purger
	now   func() time.Time
}

func NewExpiredSessionsJob(store Purger) *ExpiredSessionsJob {
	return &ExpiredSessionsJob{store: store, now: time.Now}
}

func (j *ExpiredSessionsJob) Name() string { return "refresh_session_purge" }

func (j *ExpiredSessionsJob) Execute(ctx context.Context) error {
	if _, err := j.store.DeleteExpiredSessions(ctx, j.now()); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	return nil
}
