// ABOUTME: Provider factory and options for the approximate index
// ABOUTME: Selects an index backend by name; "none" disables the index
package index

import (
	"fmt"

	"github.com/harper/topicvault/internal/storage"
	"github.com/harper/topicvault/internal/vector"
)

// Option configures an index implementation
type Option func(*options)

type options struct {
	Collection string
	Dimension  int
}

func defaultOptions() options {
	return options{
		Collection: "topicvault-embeddings",
		Dimension:  vector.DefaultDimension,
	}
}

// WithCollection sets the collection name
func WithCollection(name string) Option {
	return func(o *options) { o.Collection = name }
}

// WithDimension sets the vector dimension
func WithDimension(dim int) Option {
	return func(o *options) { o.Dimension = dim }
}

// New creates an ApproxIndex for the given provider. The "none" provider
// returns nil: search falls back to exact scans and the orchestrator skips
// index mirroring.
func New(provider string, endpoint string, opts ...Option) (storage.ApproxIndex, error) {
	switch provider {
	case "", "none":
		return nil, nil
	case "qdrant":
		return NewQdrant(endpoint, opts...)
	default:
		return nil, fmt.Errorf("unknown approximate index provider: %s", provider)
	}
}
