package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/sorteo-api/internal/domain"
	"github.com/vietanh2810/sorteo-api/internal/repository/dao"
)

func (r *RaffleRepository) InsertParticipants(ctx context.Context, participants []domain.Participant) (int64, error) {
	rows := make([]dao.Participant, len(participants))
	for i, p := range participants {
		rows[i] = r.participantDomainToDao(p)
	}

	inserted, err := r.dao.InsertParticipants(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("r.dao.InsertParticipants -> %w", err)
	}

	return inserted, nil
}

// CountEligible counts participants of the raffle that have not won yet.
func (r *RaffleRepository) CountEligible(ctx context.Context, raffleID uint) (int64, error) {
	won := false
	count, err := r.dao.CountParticipants(ctx, dao.ParticipantFilter{RaffleID: &raffleID, Won: &won})
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	return count, nil
}

func (r *RaffleRepository) CountParticipants(ctx context.Context, raffleID uint) (int64, error) {
	count, err := r.dao.CountParticipants(ctx, dao.ParticipantFilter{RaffleID: &raffleID})
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	return count, nil
}

// CountWinners counts winners of one raffle, or of every raffle when raffleID is nil.
func (r *RaffleRepository) CountWinners(ctx context.Context, raffleID *uint) (int64, error) {
	won := true
	count, err := r.dao.CountParticipants(ctx, dao.ParticipantFilter{RaffleID: raffleID, Won: &won})
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	return count, nil
}

// CountEligibleInScope is CountEligible with the same nil-means-all scoping as CountWinners.
func (r *RaffleRepository) CountEligibleInScope(ctx context.Context, raffleID *uint) (int64, error) {
	won := false
	count, err := r.dao.CountParticipants(ctx, dao.ParticipantFilter{RaffleID: raffleID, Won: &won})
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	return count, nil
}

func (r *RaffleRepository) FindEligibleAt(ctx context.Context, raffleID uint, offset int64) (domain.Participant, error) {
	found, err := r.dao.FindEligibleAt(ctx, raffleID, offset)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindEligibleAt -> %w", err)
	}

	return r.participantDaoToDomain(found), nil
}

func (r *RaffleRepository) MarkWinner(ctx context.Context, participantID uint, position int) error {
	if err := r.dao.MarkWinner(ctx, participantID, position); err != nil {
		return fmt.Errorf("r.dao.MarkWinner -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) ResetWinners(ctx context.Context, raffleID *uint) (int64, error) {
	reset, err := r.dao.ResetWinners(ctx, raffleID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ResetWinners -> %w", err)
	}

	return reset, nil
}

func (r *RaffleRepository) participantDomainToDao(p domain.Participant) dao.Participant {
	return dao.Participant{
		ID:          p.ID,
		RaffleID:    p.RaffleID,
		FullName:    p.FullName,
		DNI:         p.DNI,
		Phone:       p.Phone,
		Location:    p.Location,
		Province:    p.Province,
		CardNumber:  p.CardNumber,
		WonPosition: p.WonPosition,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *RaffleRepository) participantDaoToDomain(p dao.Participant) domain.Participant {
	return domain.Participant{
		ID:          p.ID,
		RaffleID:    p.RaffleID,
		FullName:    p.FullName,
		DNI:         p.DNI,
		Phone:       p.Phone,
		Location:    p.Location,
		Province:    p.Province,
		CardNumber:  p.CardNumber,
		WonPosition: p.WonPosition,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
