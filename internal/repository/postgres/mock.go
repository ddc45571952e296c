package postgres

import (
	"context"
	"time"

	"github.com/vpfs/backend/internal/domain"
)

// MockRepository implements domain.AuditRepository for lab/demo mode,
// where nothing needs to outlive the process.
type MockRepository struct{}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveFareRecord is a no-op in mock mode
func (r *MockRepository) SaveFareRecord(ctx context.Context, rec domain.FareRecord) error {
	return nil
}

// SaveMatchResult is a no-op in mock mode
func (r *MockRepository) SaveMatchResult(ctx context.Context, res domain.MatchResult) error {
	return nil
}

// GetFareHistory returns no history in mock mode
func (r *MockRepository) GetFareHistory(ctx context.Context, from, to time.Time) ([]domain.FareRecord, error) {
	return []domain.FareRecord{}, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
