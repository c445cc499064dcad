package search

import "context"

// Mock is a function-field Provider implementation for tests and offline
// runs.
type Mock struct {
	SearchFunc func(ctx context.Context, query string, kind Kind, cfg Config) (*Response, error)
}

// NewMock creates a mock provider that returns empty responses by default.
func NewMock() *Mock {
	return &Mock{}
}

// Search delegates to SearchFunc when set, else returns an empty response.
func (m *Mock) Search(ctx context.Context, query string, kind Kind, cfg Config) (*Response, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, kind, cfg)
	}
	return &Response{}, nil
}

// Name returns the name of this provider.
func (m *Mock) Name() string {
	return "mock"
}
