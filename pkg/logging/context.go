package logging

import "context"

type contextKey string

const stateIDKey contextKey = "qortex.state_id"

// WithStateID attaches a parallel state id to the context so that log
// records emitted while that state is being processed carry it.
func WithStateID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, stateIDKey, id)
}

// GetStateID extracts the state id from the context, if present.
func GetStateID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(stateIDKey).(string)
	return id, ok
}
