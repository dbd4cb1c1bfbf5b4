package core

import "context"

// ModelClient is the remote completion service boundary. Implementations
// apply their own request timeouts; a timeout is an ordinary failure.
type ModelClient interface {
	// Complete returns the assistant text for a role/content list.
	Complete(ctx context.Context, model string, msgs []Message) (string, error)
	// CompleteJSON constrains the response to a single valid JSON object.
	CompleteJSON(ctx context.Context, model string, msgs []Message) ([]byte, error)
	// Transcribe converts raw audio bytes to text.
	Transcribe(ctx context.Context, model string, audio []byte, filename string) (string, error)
}
