package loader

import (
	"context"
	"errors"

	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a background asset load.
type Result struct {
	Model   *scene.Node
	Texture *material.Texture
}

// Task is a background load of the model and baked texture. It resolves exactly once.
// The two loads fail independently: a missing texture still yields the model.
type Task struct {
	done   chan struct{}
	result Result
	err    error
}

func startTask(ctx context.Context, l Loader, modelURL, textureURL string, onProgress ProgressFunc) *Task {
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		var (
			res              Result
			texErr, modelErr error
			g                errgroup.Group
		)
		g.Go(func() error {
			res.Texture, texErr = l.LoadTexture(ctx, textureURL)
			return texErr
		})
		g.Go(func() error {
			res.Model, modelErr = l.LoadScene(ctx, modelURL, onProgress)
			return modelErr
		})
		_ = g.Wait()

		t.result = res
		t.err = errors.Join(modelErr, texErr)
	}()

	return t
}

// Done is closed once the task has resolved.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Poll returns the result without blocking.
//
// Returns:
//   - Result: the assets that loaded, zero until resolved
//   - bool: true once the task has resolved
//   - error: the joined load failures, each a *common.AssetLoadFailed
func (t *Task) Poll() (Result, bool, error) {
	select {
	case <-t.done:
		return t.result, true, t.err
	default:
		return Result{}, false, nil
	}
}

// Wait blocks until the task resolves or ctx is done.
//
// Parameters:
//   - ctx: bounds the wait
//
// Returns:
//   - Result: the assets that loaded
//   - error: the joined load failures or ctx.Err()
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
