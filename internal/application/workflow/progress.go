package workflow

import "context"

type progressKey struct{}

// ProgressFunc receives interim notices ("Thinking...") while an operation
// waits on a collaborator.
type ProgressFunc func(text string)

// WithProgress attaches a progress sink to ctx.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progress(ctx context.Context, text string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(text)
	}
}
