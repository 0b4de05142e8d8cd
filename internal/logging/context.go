package logging

import "context"

type interactionKey struct{}

// WithInteraction tags ctx with the id of the user interaction being
// handled. Both logger backends add it to every entry as "interaction".
func WithInteraction(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, interactionKey{}, id)
}

// InteractionID returns the id set by WithInteraction, or "".
func InteractionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(interactionKey{}).(string)
	return id
}

func contextArgs(ctx context.Context, args []any) []any {
	id := InteractionID(ctx)
	if id == "" {
		return args
	}
	out := make([]any, 0, len(args)+2)
	out = append(out, args...)
	return append(out, "interaction", id)
}
