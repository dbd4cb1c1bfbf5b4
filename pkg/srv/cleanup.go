package srv

import "context"

// cleanupService wraps a close function as a Service so resources like the
// database handle shut down in the same pass as the real services.
type cleanupService struct {
	close func() error
}

func (c *cleanupService) Start(_ context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(_ context.Context) error {
	if c.close != nil {
		return c.close()
	}
	return nil
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{close: fn}
}
