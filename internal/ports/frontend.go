package ports

import (
	"context"
)

// Frontend is a long-running surface that serves detection requests
type Frontend interface {
	// Start serves requests until Stop is called
	Start() error

	// Stop shuts the frontend down, waiting for in-flight requests up to
	// the context deadline
	Stop(ctx context.Context) error
}
