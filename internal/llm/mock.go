package llm

import "context"

// Mock is a function-field Generator implementation for tests.
type Mock struct {
	GenerateJSONFunc func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error)
	GenerateTextFunc func(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error)
}

// NewMock creates a mock generator that returns empty output by default.
func NewMock() *Mock {
	return &Mock{}
}

// GenerateJSON delegates to GenerateJSONFunc when set.
func (m *Mock) GenerateJSON(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, system, user, maxTokens, temperature)
	}
	return "", nil
}

// GenerateText delegates to GenerateTextFunc when set.
func (m *Mock) GenerateText(ctx context.Context, system, user string, maxTokens int32, temperature float32) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, system, user, maxTokens, temperature)
	}
	return "", nil
}
