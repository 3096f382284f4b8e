package reminder

import (
	"context"
	"log"
	"time"
)

// Sweeper runs the daily reminder jobs: nudges for untouched retail leads
// and one-week follow-ups for closed corporate deals.
type Sweeper struct {
	repo Repository
	now  func() time.Time
}

// NewSweeper creates a sweeper using the given clock, or time.Now when nil.
func NewSweeper(repo Repository, clock func() time.Time) *Sweeper {
	if clock == nil {
		clock = time.Now
	}
	return &Sweeper{repo: repo, now: clock}
}

// RunOnce executes both sweeps. Each sweep dedupes per day in SQL, so a
// second run on the same day inserts nothing.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	now := s.now()

	retail, err := s.repo.SweepUntouchedRetail(ctx, now)
	if err != nil {
		return err
	}
	corporate, err := s.repo.SweepCorporateFollowUps(ctx, now)
	if err != nil {
		return err
	}
	if retail > 0 || corporate > 0 {
		log.Printf("reminder sweep: %d retail, %d corporate follow-up", retail, corporate)
	}
	return nil
}

// Start runs the sweeps once a day at hour:minute local time until ctx is
// cancelled. Errors are logged and the loop keeps going.
func (s *Sweeper) Start(ctx context.Context, hour, minute int) {
	go func() {
		for {
			wait := time.Until(s.nextRun(hour, minute))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			if err := s.RunOnce(ctx); err != nil {
				log.Printf("reminder sweep error: %v", err)
			}
		}
	}()
}

func (s *Sweeper) nextRun(hour, minute int) time.Time {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
