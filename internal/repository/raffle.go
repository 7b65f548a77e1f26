package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/sorteo-api/internal/domain"
	"github.com/vietanh2810/sorteo-api/internal/repository/dao"
)

var (
	ErrRaffleNotFound      = dao.ErrRaffleNotFound
	ErrNoActiveRaffle      = dao.ErrNoActiveRaffle
	ErrPrizeNotFound       = dao.ErrPrizeNotFound
	ErrPositionTaken       = dao.ErrPositionTaken
	ErrParticipantNotFound = dao.ErrParticipantNotFound
	ErrAlreadyWon          = dao.ErrAlreadyWon
)

type RaffleDAO interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	LockRaffle(ctx context.Context, id uint) (dao.Raffle, error)
	FindActiveRaffle(ctx context.Context) (dao.Raffle, error)
	RaffleExists(ctx context.Context, id uint) (bool, error)
	SetRaffleActive(ctx context.Context, id uint, active bool) (dao.Raffle, error)
	FindPrizeAssignments(ctx context.Context, raffleID uint) ([]dao.PrizeAssignment, error)
	InsertParticipants(ctx context.Context, participants []dao.Participant) (int64, error)
	CountParticipants(ctx context.Context, filter dao.ParticipantFilter) (int64, error)
	FindEligibleAt(ctx context.Context, raffleID uint, offset int64) (dao.Participant, error)
	MarkWinner(ctx context.Context, participantID uint, position int) error
	ResetWinners(ctx context.Context, raffleID *uint) (int64, error)
}

type RaffleRepository struct {
	dao RaffleDAO
}

func NewRaffleRepository(dao RaffleDAO) *RaffleRepository {
	return &RaffleRepository{
		dao: dao,
	}
}

func (r *RaffleRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.dao.Transaction(ctx, fn)
}

func (r *RaffleRepository) LockForDraw(ctx context.Context, id uint) (domain.Raffle, error) {
	found, err := r.dao.LockRaffle(ctx, id)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.LockRaffle -> %w", err)
	}

	return r.raffleDaoToDomain(found), nil
}

func (r *RaffleRepository) FindActive(ctx context.Context) (domain.Raffle, error) {
	found, err := r.dao.FindActiveRaffle(ctx)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.FindActiveRaffle -> %w", err)
	}

	return r.raffleDaoToDomain(found), nil
}

func (r *RaffleRepository) RaffleExists(ctx context.Context, id uint) (bool, error) {
	exists, err := r.dao.RaffleExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("r.dao.RaffleExists -> %w", err)
	}

	return exists, nil
}

func (r *RaffleRepository) SetActive(ctx context.Context, id uint, active bool) (domain.Raffle, error) {
	updated, err := r.dao.SetRaffleActive(ctx, id, active)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.SetRaffleActive -> %w", err)
	}

	return r.raffleDaoToDomain(updated), nil
}

func (r *RaffleRepository) FindPrizeAssignments(ctx context.Context, raffleID uint) ([]domain.PrizeAssignment, error) {
	found, err := r.dao.FindPrizeAssignments(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPrizeAssignments -> %w", err)
	}

	assignments := make([]domain.PrizeAssignment, len(found))
	for i, a := range found {
		assignments[i] = r.assignmentDaoToDomain(a)
	}

	return assignments, nil
}

func (r *RaffleRepository) raffleDaoToDomain(raffle dao.Raffle) domain.Raffle {
	d := domain.Raffle{
		ID:        raffle.ID,
		Name:      raffle.Name,
		Date:      raffle.Date,
		Active:    raffle.Active,
		CreatedAt: raffle.CreatedAt,
		UpdatedAt: raffle.UpdatedAt,
	}

	if len(raffle.PrizeAssignments) > 0 {
		d.Assignments = make([]domain.PrizeAssignment, len(raffle.PrizeAssignments))
		for i, a := range raffle.PrizeAssignments {
			d.Assignments[i] = r.assignmentDaoToDomain(a)
		}
	}

	return d
}

func (r *RaffleRepository) prizeDaoToDomain(prize dao.Prize) domain.Prize {
	return domain.Prize{
		ID:          prize.ID,
		Name:        prize.Name,
		Description: prize.Description,
	}
}

func (r *RaffleRepository) assignmentDaoToDomain(a dao.PrizeAssignment) domain.PrizeAssignment {
	return domain.PrizeAssignment{
		RaffleID: a.RaffleID,
		PrizeID:  a.PrizeID,
		Position: a.Position,
		Prize:    r.prizeDaoToDomain(a.Prize),
	}
}
