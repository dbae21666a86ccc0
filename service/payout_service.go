package service

import (
	"context"
	"fmt"

	"bookmaker/models"
)

type payoutService struct {
	uowFactory UnitOfWorkFactory
}

// NewPayoutService creates a new payout service
func NewPayoutService(uowFactory UnitOfWorkFactory) PayoutService {
	return &payoutService{
		uowFactory: uowFactory,
	}
}

// GetPayoutsByUser returns all payouts for a user, newest first
func (s *payoutService) GetPayoutsByUser(ctx context.Context, userID int64) ([]*models.Payout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	payouts, err := uow.PayoutRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payouts: %w", err)
	}

	return payouts, nil
}

// GetPayoutByID retrieves a payout by ID
func (s *payoutService) GetPayoutByID(ctx context.Context, payoutID int64) (*models.Payout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	payout, err := uow.PayoutRepository().GetByID(ctx, payoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	if payout == nil {
		return nil, fmt.Errorf("payout %d: %w", payoutID, models.ErrPayoutNotFound)
	}

	return payout, nil
}
