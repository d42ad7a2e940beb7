package parkgate

import "context"

type screenPathContextKey struct{}
type callLabelContextKey struct{}

// WithScreenPath attaches the screen that originated an outbound call to ctx.
// The Coordinator prefers it over the process-wide CurrentPathFunc when
// deciding whether a failure episode should navigate, so calls fanned out by
// a screen that is already the redirect target stay silent.
func WithScreenPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, screenPathContextKey{}, path)
}

// WithCallLabel attaches a short caller label (e.g. the widget issuing the
// call) to ctx. It surfaces only in audit event metadata.
func WithCallLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, callLabelContextKey{}, label)
}

func screenPathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	path, _ := ctx.Value(screenPathContextKey{}).(string)
	return path
}

func callLabelFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	label, _ := ctx.Value(callLabelContextKey{}).(string)
	return label
}
