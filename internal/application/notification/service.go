package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/shared"
)

// Service exposes the operator-facing notification operations: inspecting
// the queue and re-queueing dead or failed deliveries.
type Service struct {
	repo notification.Repository
}

// NewService creates a new Service
func NewService(repo notification.Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a notification by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*NotificationResponse, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToNotificationResponse(found)
	return &response, nil
}

// ListByStatus returns notifications in the given status, oldest first
func (s *Service) ListByStatus(ctx context.Context, status notification.Status, limit int) ([]NotificationResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	found, err := s.repo.FindByStatus(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	responses := make([]NotificationResponse, 0, len(found))
	for _, n := range found {
		responses = append(responses, ToNotificationResponse(n))
	}
	return responses, nil
}

// ListBySale returns all notifications enqueued for a sale
func (s *Service) ListBySale(ctx context.Context, saleID uuid.UUID) ([]NotificationResponse, error) {
	found, err := s.repo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	responses := make([]NotificationResponse, 0, len(found))
	for _, n := range found {
		responses = append(responses, ToNotificationResponse(n))
	}
	return responses, nil
}

// Resend re-queues a failed or dead notification at an operator's request
func (s *Service) Resend(ctx context.Context, id uuid.UUID) (*NotificationResponse, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := found.Resend(); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, err.Error())
	}
	if err := s.repo.Update(ctx, found); err != nil {
		return nil, err
	}
	response := ToNotificationResponse(found)
	return &response, nil
}
