package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

type ResetRepository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	CountWinners(ctx context.Context, raffleID *uint) (int64, error)
	CountEligibleInScope(ctx context.Context, raffleID *uint) (int64, error)
	ResetWinners(ctx context.Context, raffleID *uint) (int64, error)
}

type ResetService struct {
	repo ResetRepository
}

func NewResetService(repo ResetRepository) *ResetService {
	return &ResetService{
		repo: repo,
	}
}

// Reset clears the won position of every winner of one raffle, or of every
// raffle when raffleID is nil. It is a no-op when the scope has no winners.
func (s *ResetService) Reset(ctx context.Context, raffleID *uint) (domain.ResetResult, error) {
	result := domain.ResetResult{RaffleID: raffleID}

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		winners, err := s.repo.CountWinners(ctx, raffleID)
		if err != nil {
			return fmt.Errorf("s.repo.CountWinners -> %w", err)
		}

		if winners > 0 {
			result.ResetCount, err = s.repo.ResetWinners(ctx, raffleID)
			if err != nil {
				return fmt.Errorf("s.repo.ResetWinners -> %w", err)
			}
		}

		result.RemainingEligibleCount, err = s.repo.CountEligibleInScope(ctx, raffleID)
		if err != nil {
			return fmt.Errorf("s.repo.CountEligibleInScope -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.ResetResult{}, fmt.Errorf("s.repo.Transaction -> %w", err)
	}

	result.Message = resetMessage(raffleID, result.ResetCount)
	if result.ResetCount == 0 {
		return result, nil
	}

	fields := []zap.Field{
		zap.Int64("reset_count", result.ResetCount),
		zap.Int64("remaining_eligible_count", result.RemainingEligibleCount),
	}
	if raffleID != nil {
		zap.L().Warn("raffle winners reset", append(fields, zap.Uint("raffle_id", *raffleID))...)
	} else {
		zap.L().Warn("all raffle winners reset", fields...)
	}

	return result, nil
}

func resetMessage(raffleID *uint, reset int64) string {
	switch {
	case reset == 0 && raffleID != nil:
		return "There are no winners to reset in the selected raffle."
	case reset == 0:
		return "There are no winners to reset."
	case raffleID != nil:
		return "The raffle winners have been reset successfully."
	default:
		return "All winners have been reset successfully."
	}
}
