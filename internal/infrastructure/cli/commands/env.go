package commands

import (
	"context"
	"sync"

	"github.com/rhonimohanraj/anti-bot/internal/app"
)

// Env builds the container on first use, after flags are parsed.
type Env struct {
	Options app.Options

	once      sync.Once
	container *app.Container
	err       error
}

// NewEnv returns an environment for the given options.
func NewEnv(opts app.Options) *Env {
	return &Env{Options: opts}
}

// Container returns the shared dependency container.
func (e *Env) Container(ctx context.Context) (*app.Container, error) {
	e.once.Do(func() {
		e.container, e.err = app.BuildContainer(ctx, e.Options)
	})
	return e.container, e.err
}

// Close releases the container if it was built.
func (e *Env) Close() error {
	if e.container == nil {
		return nil
	}
	return e.container.Close()
}
