package marketplace

import (
	"context"
	"fmt"
)

// Runner decides where a search executes. Callers already on a dedicated
// goroutine use InlineRunner; callers that must stay responsive to their
// context use DetachedRunner.
type Runner interface {
	Run(ctx context.Context, fn func(context.Context) ([]string, error)) ([]string, error)
}

type InlineRunner struct{}

func (InlineRunner) Run(ctx context.Context, fn func(context.Context) ([]string, error)) (urls []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			urls, err = nil, fmt.Errorf("search panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// DetachedRunner runs the search on its own goroutine and returns as soon
// as it finishes or ctx is done, whichever comes first.
type DetachedRunner struct{}

type runResult struct {
	urls []string
	err  error
}

func (DetachedRunner) Run(ctx context.Context, fn func(context.Context) ([]string, error)) ([]string, error) {
	done := make(chan runResult, 1)
	go func() {
		urls, err := InlineRunner{}.Run(ctx, fn)
		done <- runResult{urls: urls, err: err}
	}()

	select {
	case r := <-done:
		return r.urls, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
