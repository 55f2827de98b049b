package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation outlives its limit.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned when a newer evaluation started on the same
	// Engine before this one finished.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalOutcome passes an evaluation result through a channel.
type evalOutcome struct {
	result *EvalResult
	err    error
}

// waitWithTimeout waits for an outcome from ch, giving up when timeout
// elapses or ctx is done. It uses a generation counter to discard stale
// results from previous evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ctx context.Context,
	ch <-chan evalOutcome,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*EvalResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, ErrSuperseded
		}
		return out.result, out.err

	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)

	case <-ctx.Done():
		return nil, fmt.Errorf("evaluation abandoned: %w", ctx.Err())
	}
}
