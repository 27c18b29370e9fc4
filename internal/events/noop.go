package events

import "context"

// NoopPublisher drops every event. It stands in when no broker is
// configured so the engine never branches on whether publishing is on.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
