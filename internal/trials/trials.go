// Package trials selects the clinical-trial matching backend.
package trials

import (
	"github.com/nmurthy/oncopilot/internal/config"
	"github.com/nmurthy/oncopilot/internal/trials/ctgov"
	"github.com/nmurthy/oncopilot/internal/trials/mock"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// NewMatcher constructs the trial matcher selected by config.
// Called once at server startup.
func NewMatcher(cfg config.TrialsConfig) models.TrialMatcher {
	if cfg.UseMock {
		return mock.NewMatcher()
	}
	return ctgov.NewClient(cfg.BaseURL, cfg.Timeout)
}
