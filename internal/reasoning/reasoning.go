// Package reasoning selects the reasoning provider backend.
package reasoning

import (
	"github.com/nmurthy/oncopilot/internal/config"
	"github.com/nmurthy/oncopilot/internal/reasoning/mock"
	"github.com/nmurthy/oncopilot/internal/reasoning/openai"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// NewProvider constructs the reasoning provider selected by config.
// Called once at server startup; business logic never branches on mock mode.
func NewProvider(cfg config.LLMConfig) models.ReasoningProvider {
	if cfg.UseMock {
		return mock.NewProvider()
	}
	return openai.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
}
