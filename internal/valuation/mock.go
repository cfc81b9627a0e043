package valuation

import (
	"context"

	"github.com/wavemarine/deckworth/internal/models"
)

// MockGenerator is a canned Generator for tests and for running without an
// API key.
type MockGenerator struct {
	Response GenerationResult
	Disabled bool
	Calls    int
}

// NewMockGenerator returns a mock that answers every prompt with the given
// text and an ok status.
func NewMockGenerator(text string) *MockGenerator {
	return &MockGenerator{
		Response: GenerationResult{Text: text, Status: models.GenerationOK},
	}
}

// Generate returns the canned response.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPayload string) GenerationResult {
	m.Calls++
	return m.Response
}

// Enabled reports the configured availability.
func (m *MockGenerator) Enabled() bool {
	return !m.Disabled
}
