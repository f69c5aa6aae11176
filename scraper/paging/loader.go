package paging

import (
	"context"
	"time"

	"autohome-scraper/utils"
)

// DefaultPatience is the number of consecutive rounds without new records
// tolerated before the loader gives up.
const DefaultPatience = 3

// StopReason says why a Loader stopped.
type StopReason int

const (
	StopNone StopReason = iota
	StopTargetReached
	StopStagnated
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopTargetReached:
		return "target reached"
	case StopStagnated:
		return "no new records"
	case StopCancelled:
		return "cancelled"
	default:
		return "running"
	}
}

// ShouldStop is the loader's stop predicate. The target check wins when both
// conditions hold.
func ShouldStop(accumulated, stagnant, target, patience int) (StopReason, bool) {
	if accumulated >= target {
		return StopTargetReached, true
	}
	if stagnant >= patience {
		return StopStagnated, true
	}
	return StopNone, false
}

// Source is what a Loader drives: an action that makes more content appear
// and an extraction of whatever is currently rendered.
type Source[R any] interface {
	LoadMore(ctx context.Context) error
	Extract(ctx context.Context) ([]R, error)
}

// Loader repeatedly loads and extracts until the target count is reached or
// Patience consecutive rounds bring nothing new.
type Loader[R any, K comparable] struct {
	Source   Source[R]
	Key      func(R) K
	Target   int
	Patience int
	// Settle is waited after every round.
	Settle time.Duration
	// Prime runs one extraction before the first load action. It does not
	// count towards patience.
	Prime  bool
	Logger *utils.Logger
}

// LoadResult is the accumulated output of a Loader run.
type LoadResult[R any] struct {
	Records []R
	Rounds  int
	Reason  StopReason
}

// Run executes the loop. It always returns what was accumulated, including
// when ctx is cancelled.
func (l *Loader[R, K]) Run(ctx context.Context) LoadResult[R] {
	patience := l.Patience
	if patience <= 0 {
		patience = DefaultPatience
	}

	var res LoadResult[R]
	stagnant := 0

	if l.Prime {
		batch, err := l.Source.Extract(ctx)
		if err != nil {
			l.Logger.Warn("[loader] Initial extraction failed: %v", err)
		}
		res.Records = append(res.Records, Dedup(res.Records, batch, l.Key)...)
		l.Logger.Info("[loader] Initial round: %d records", len(res.Records))
	}

	for {
		if ctx.Err() != nil {
			res.Reason = StopCancelled
			return res
		}
		if reason, stop := ShouldStop(len(res.Records), stagnant, l.Target, patience); stop {
			res.Reason = reason
			l.Logger.Info("[loader] Stopped after %d rounds: %s (%d records)", res.Rounds, reason, len(res.Records))
			return res
		}

		res.Rounds++
		fresh, err := l.round(ctx, res.Records)
		switch {
		case err != nil:
			stagnant++
			l.Logger.Warn("[loader] Round %d failed (%d/%d without progress): %v", res.Rounds, stagnant, patience, err)
		case len(fresh) == 0:
			stagnant++
			l.Logger.Info("[loader] Round %d: no new records (%d/%d)", res.Rounds, stagnant, patience)
		default:
			stagnant = 0
			res.Records = append(res.Records, fresh...)
			l.Logger.Info("[loader] Round %d: %d new, %d total", res.Rounds, len(fresh), len(res.Records))
		}

		if err := utils.Sleep(ctx, l.Settle); err != nil {
			res.Reason = StopCancelled
			return res
		}
	}
}

func (l *Loader[R, K]) round(ctx context.Context, have []R) ([]R, error) {
	if err := l.Source.LoadMore(ctx); err != nil {
		return nil, err
	}
	batch, err := l.Source.Extract(ctx)
	if err != nil {
		return nil, err
	}
	return Dedup(have, batch, l.Key), nil
}
