package app

import (
	"context"

	"github.com/ramonehamilton/DeckOps/internal/metrics"
	"github.com/ramonehamilton/DeckOps/internal/version"
)

// SystemFacade reports service status and metrics.
type SystemFacade struct {
	services *Services
}

// NewSystemFacade creates a new SystemFacade.
func NewSystemFacade(services *Services) *SystemFacade {
	return &SystemFacade{services: services}
}

// SystemMetrics is a snapshot of service counters.
type SystemMetrics struct {
	Version     string         `json:"version"`
	CachedCards int            `json:"cached_cards"`
	Metrics     *metrics.Stats `json:"metrics"`
}

// GetMetrics returns the current metrics snapshot.
func (s *SystemFacade) GetMetrics(ctx context.Context) (*SystemMetrics, error) {
	out := &SystemMetrics{Version: version.String()}

	if s.services.Metrics != nil {
		out.Metrics = s.services.Metrics.GetStats()
	}

	if s.services.Storage != nil {
		count, err := s.services.Storage.CachedCardCount(ctx)
		if err != nil {
			return nil, err
		}
		out.CachedCards = count
	}

	return out, nil
}
