// Package scheduler runs periodic maintenance jobs against the ledger store.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"club-points-ledger/internal/store"
	"club-points-ledger/internal/tier"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

// Scheduler owns the gocron scheduler and its jobs
type Scheduler struct {
	sched gocron.Scheduler
}

// New registers the tier resync job. A non-positive interval disables it.
func New(db store.LedgerStore, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	if interval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()
				fixed, err := ResyncTiers(ctx, db)
				if err != nil {
					zap.L().Error("Tier resync failed", zap.Int("fixed", fixed), zap.Error(err))
					return
				}
				if fixed > 0 {
					zap.L().Info("Tier resync corrected members", zap.Int("fixed", fixed))
				}
			}),
			gocron.WithName("tier-resync"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("failed to register tier resync job: %w", err)
		}
	}

	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	zap.L().Info("Scheduler started", zap.Int("jobs", len(s.sched.Jobs())))
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

// ResyncTiers rewrites every stored tier that disagrees with the member's
// points and challenger flag. It returns how many members were corrected.
func ResyncTiers(ctx context.Context, db store.LedgerStore) (int, error) {
	users, err := db.GetUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	fixed := 0
	var errs []error
	for _, user := range users {
		if user.Tier == tier.Classify(user.Points, user.IsChallenger) {
			continue
		}
		changed, err := store.InTx(ctx, db, func(ctx context.Context, tx store.Tx) (bool, error) {
			current, err := tx.GetUser(ctx, user.Id)
			if err != nil {
				return false, err
			}
			want := tier.Classify(current.Points, current.IsChallenger)
			if current.Tier == want {
				return false, nil
			}
			zap.L().Info("Correcting member tier",
				zap.String("user_id", current.Id),
				zap.String("old_tier", string(current.Tier)),
				zap.String("new_tier", string(want)))
			current.Tier = want
			return true, tx.SaveUser(ctx, current)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", user.Id, err))
			continue
		}
		if changed {
			fixed++
		}
	}
	return fixed, errors.Join(errs...)
}
