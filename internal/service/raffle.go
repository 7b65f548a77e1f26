package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/sorteo-api/internal/domain"
	"github.com/vietanh2810/sorteo-api/internal/repository"
)

var (
	ErrRaffleNotFound = repository.ErrRaffleNotFound
	ErrNoActiveRaffle = repository.ErrNoActiveRaffle
)

type RaffleRepository interface {
	FindActive(ctx context.Context) (domain.Raffle, error)
	SetActive(ctx context.Context, id uint, active bool) (domain.Raffle, error)
}

type RaffleService struct {
	repo RaffleRepository
}

func NewRaffleService(repo RaffleRepository) *RaffleService {
	return &RaffleService{
		repo: repo,
	}
}

func (s *RaffleService) ActiveRaffle(ctx context.Context) (domain.Raffle, error) {
	raffle, err := s.repo.FindActive(ctx)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	return raffle, nil
}

// Activate sets the active flag of a raffle. Activating one raffle deactivates
// all the others in the same transaction, so at most one is ever active.
func (s *RaffleService) Activate(ctx context.Context, id uint, active bool) (domain.Raffle, error) {
	raffle, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("s.repo.SetActive -> %w", err)
	}

	return raffle, nil
}
