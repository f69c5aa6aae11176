package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autohome-scraper/utils"
)

// scriptedSource plays back one batch per Extract call and returns
// loadErrs[i] from the i-th LoadMore call.
type scriptedSource struct {
	batches  [][]int
	loadErrs []error
	loads    int
	extracts int
}

func (s *scriptedSource) LoadMore(context.Context) error {
	i := s.loads
	s.loads++
	if i < len(s.loadErrs) {
		return s.loadErrs[i]
	}
	return nil
}

func (s *scriptedSource) Extract(context.Context) ([]int, error) {
	i := s.extracts
	s.extracts++
	if i < len(s.batches) {
		return s.batches[i], nil
	}
	return nil, nil
}

func newLoader(src Source[int], target int, prime bool) *Loader[int, int] {
	return &Loader[int, int]{
		Source:   src,
		Key:      func(n int) int { return n },
		Target:   target,
		Patience: DefaultPatience,
		Prime:    prime,
		Logger:   utils.NewNopLogger(),
	}
}

func TestShouldStop(t *testing.T) {
	tests := []struct {
		name                  string
		acc, stagnant, target int
		want                  StopReason
		stop                  bool
	}{
		{"keep going", 10, 2, 500, StopNone, false},
		{"target reached", 500, 0, 500, StopTargetReached, true},
		{"target exceeded", 503, 1, 500, StopTargetReached, true},
		{"stagnated", 120, 3, 500, StopStagnated, true},
		{"target wins over stagnation", 500, 3, 500, StopTargetReached, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, stop := ShouldStop(tt.acc, tt.stagnant, tt.target, DefaultPatience)
			assert.Equal(t, tt.want, reason)
			assert.Equal(t, tt.stop, stop)
		})
	}
}

func TestLoaderStopsAfterThreeEmptyRounds(t *testing.T) {
	src := &scriptedSource{}
	res := newLoader(src, 100, false).Run(context.Background())

	assert.Equal(t, StopStagnated, res.Reason)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, 3, src.loads)
	assert.Empty(t, res.Records)
}

func TestLoaderProgressResetsPatience(t *testing.T) {
	// Pages render cumulatively, as the ranking does.
	src := &scriptedSource{batches: [][]int{
		{1, 2},
		{1, 2},
		{1, 2},
		{1, 2, 3},
		{1, 2, 3},
		{1, 2, 3},
		{1, 2, 3},
	}}
	res := newLoader(src, 100, false).Run(context.Background())

	assert.Equal(t, StopStagnated, res.Reason)
	assert.Equal(t, 7, res.Rounds)
	assert.Equal(t, []int{1, 2, 3}, res.Records)
}

func TestLoaderReachesTarget(t *testing.T) {
	src := &scriptedSource{batches: [][]int{{1, 2}, {1, 2, 3, 4}, {1, 2, 3, 4, 5, 6}}}
	res := newLoader(src, 4, false).Run(context.Background())

	assert.Equal(t, StopTargetReached, res.Reason)
	assert.Equal(t, 2, res.Rounds)
	assert.Equal(t, []int{1, 2, 3, 4}, res.Records)
}

func TestLoaderErrorsCountAsNoProgress(t *testing.T) {
	boom := errors.New("click intercepted")
	src := &scriptedSource{
		batches:  [][]int{{1}},
		loadErrs: []error{boom, nil, boom, boom, boom},
	}
	res := newLoader(src, 100, false).Run(context.Background())

	assert.Equal(t, StopStagnated, res.Reason)
	// error, progress (reset), error, error, error
	assert.Equal(t, 5, res.Rounds)
	assert.Equal(t, []int{1}, res.Records)
}

func TestLoaderPrimeDoesNotSpendPatience(t *testing.T) {
	src := &scriptedSource{batches: [][]int{{1, 2, 3}}}
	res := newLoader(src, 100, true).Run(context.Background())

	assert.Equal(t, StopStagnated, res.Reason)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, 4, src.extracts)
	assert.Equal(t, []int{1, 2, 3}, res.Records)
}

func TestLoaderPrimeCanMeetTarget(t *testing.T) {
	src := &scriptedSource{batches: [][]int{{1, 2, 3}}}
	res := newLoader(src, 3, true).Run(context.Background())

	assert.Equal(t, StopTargetReached, res.Reason)
	assert.Zero(t, res.Rounds)
	assert.Zero(t, src.loads)
}

func TestLoaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{batches: [][]int{{1}}}
	res := newLoader(src, 100, true).Run(ctx)

	require.Equal(t, StopCancelled, res.Reason)
	assert.Zero(t, res.Rounds)
	assert.Equal(t, []int{1}, res.Records, "primed records survive cancellation")
}
