package app

import (
	"context"
	"strings"

	"needsstep/internal/domain"

	"github.com/charmbracelet/log"
)

// TargetService encapsulates target-tracking use cases. Unlike need
// questions, target names belong to the user who created them.
type TargetService struct {
	*Tracker
	names domain.TargetNameRepository
}

// NewTargetService creates a TargetService backed by the given repositories.
func NewTargetService(entries domain.EntryRepository, measures domain.MeasurementRepository, names domain.TargetNameRepository, logger *log.Logger) *TargetService {
	return &TargetService{
		Tracker: NewTracker(domain.TargetKind, entries, measures, names, logger),
		names:   names,
	}
}

// CreateName stores a new target name owned by userID.
func (s *TargetService) CreateName(ctx context.Context, userID int64, content string, positive bool) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, invalid("Content is required")
	}
	id, err := s.names.Create(ctx, domain.TargetName{UserID: userID, Content: content, Positive: positive})
	if err != nil {
		return 0, s.fail("Could not create target name", err)
	}
	return id, nil
}

// MyNames lists the target names owned by userID.
func (s *TargetService) MyNames(ctx context.Context, userID int64) ([]domain.TargetName, error) {
	items, err := s.names.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail("Could not find any target names", err)
	}
	return items, nil
}

// EditName merges patch onto target name id if userID owns it.
func (s *TargetService) EditName(ctx context.Context, userID, id int64, patch domain.TargetNamePatch) error {
	n, err := s.names.Get(ctx, id)
	if err != nil {
		return s.fail("Could not edit target name", err)
	}
	if err := authorize(userID, n != nil, n.OwnerID(), "edit a", "target name"); err != nil {
		return err
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return invalid("Content is required")
	}
	patch.Apply(n)
	if err := s.names.Update(ctx, *n); err != nil {
		return s.fail("Could not edit target name", err)
	}
	return nil
}

// DeleteName removes target name id if userID owns it.
func (s *TargetService) DeleteName(ctx context.Context, userID, id int64) error {
	n, err := s.names.Get(ctx, id)
	if err != nil {
		return s.fail("Could not delete target name", err)
	}
	if err := authorize(userID, n != nil, n.OwnerID(), "delete a", "target name"); err != nil {
		return err
	}
	if err := s.names.Delete(ctx, id); err != nil {
		return s.fail("Could not delete target name", err)
	}
	return nil
}
