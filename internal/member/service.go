// Package member manages the church membership roll: contact details,
// membership status, baptism records, and roll statistics.
package member

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parishworks/chms-core/internal/audit"
)

// Audit actions emitted by the member service.
const (
	actionMemberCreated = "MEMBER_CREATED"
	actionMemberUpdated = "MEMBER_UPDATED"
	actionMemberDeleted = "MEMBER_DELETED"
)

// Service validates membership records and layers the audit trail over
// the repository.
type Service struct {
	repo   Repository
	audit  *audit.SafeRecorder
	logger *slog.Logger
}

// NewService creates the member service.
func NewService(repo Repository, recorder *audit.SafeRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: recorder, logger: logger}
}

// Create validates and stores a new membership record.
func (s *Service) Create(ctx context.Context, actorID *int64, m *Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionMemberCreated,
		Resource:   "members",
		ResourceID: &m.ID,
		Details:    fmt.Sprintf("added member %s", m.Name),
	})
	s.logger.Info("member created", "member_id", m.ID, "name", m.Name)
	return nil
}

// Update validates and replaces an existing record.
func (s *Service) Update(ctx context.Context, actorID *int64, m *Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionMemberUpdated,
		Resource:   "members",
		ResourceID: &m.ID,
		Details:    fmt.Sprintf("updated member %s", m.Name),
	})
	return nil
}

// Delete removes a membership record.
func (s *Service) Delete(ctx context.Context, actorID *int64, id int64) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionMemberDeleted,
		Resource:   "members",
		ResourceID: &id,
		Details:    fmt.Sprintf("deleted member %s", m.Name),
	})
	s.logger.Info("member deleted", "member_id", id, "name", m.Name)
	return nil
}

// Get retrieves a single member.
func (s *Service) Get(ctx context.Context, id int64) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the full roll ordered by name.
func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}

// ListByStatus returns members filtered by membership status.
func (s *Service) ListByStatus(ctx context.Context, status string) ([]Member, error) {
	if !contains(ValidStatuses, status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListBaptized returns the baptized members.
func (s *Service) ListBaptized(ctx context.Context) ([]Member, error) {
	return s.repo.ListBaptized(ctx)
}

// Search matches members by name, email, or mobile number.
func (s *Service) Search(ctx context.Context, query string) ([]Member, error) {
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

// Statistics summarises the roll.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

// UpcomingBirthdays returns birthdays within the next N days.
func (s *Service) UpcomingBirthdays(ctx context.Context, days int) ([]Birthday, error) {
	if days <= 0 {
		days = 30
	}
	return s.repo.UpcomingBirthdays(ctx, days)
}
