package lifecycle

import (
	"context"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
)

type SwipeResult struct {
	Direction enums.Direction
	Candidate model.Candidate
	Matched   bool
	Match     *model.Match
}

// PendingSwipe is a swipe accepted by the engine whose commit runs after the
// configured delay. It always completes; there is no cancellation.
type PendingSwipe struct {
	direction enums.Direction
	candidate model.Candidate
	done      chan struct{}
	result    SwipeResult
}

func newPendingSwipe(direction enums.Direction, candidate model.Candidate) *PendingSwipe {
	return &PendingSwipe{
		direction: direction,
		candidate: candidate,
		done:      make(chan struct{}),
	}
}

func (p *PendingSwipe) Direction() enums.Direction {
	return p.direction
}

func (p *PendingSwipe) Candidate() model.Candidate {
	return p.candidate
}

func (p *PendingSwipe) Done() <-chan struct{} {
	return p.done
}

func (p *PendingSwipe) Result() (SwipeResult, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return SwipeResult{}, false
	}
}

// Wait blocks until the commit lands or ctx ends. Giving up on ctx does not
// stop the commit.
func (p *PendingSwipe) Wait(ctx context.Context) (SwipeResult, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return SwipeResult{}, ctx.Err()
	}
}

func (p *PendingSwipe) complete(result SwipeResult) {
	p.result = result
	close(p.done)
}
