package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/sorteo-api/internal/config"
	"github.com/vietanh2810/sorteo-api/internal/domain"
	"github.com/vietanh2810/sorteo-api/internal/pkg/keylock"
	"github.com/vietanh2810/sorteo-api/internal/repository"
)

var (
	ErrParticipantNotFound = repository.ErrParticipantNotFound
	ErrAlreadyWon          = repository.ErrAlreadyWon

	ErrNoEligibleParticipants = errors.New("no eligible participants: everyone has already won or nobody is registered")
	ErrNoPrizes               = errors.New("raffle has no prizes to draw")
	ErrAllPrizesAwarded       = errors.New("all prizes have already been awarded")
	ErrSelectionInconsistent  = errors.New("winner selection is inconsistent with the eligible count")
)

type DrawRepository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	FindActive(ctx context.Context) (domain.Raffle, error)
	LockForDraw(ctx context.Context, id uint) (domain.Raffle, error)
	FindPrizeAssignments(ctx context.Context, raffleID uint) ([]domain.PrizeAssignment, error)
	CountEligible(ctx context.Context, raffleID uint) (int64, error)
	CountParticipants(ctx context.Context, raffleID uint) (int64, error)
	FindEligibleAt(ctx context.Context, raffleID uint, offset int64) (domain.Participant, error)
	MarkWinner(ctx context.Context, participantID uint, position int) error
}

// IndexSource picks the offset of the winner among the eligible participants.
type IndexSource interface {
	// Index returns a uniformly distributed value in [0, n).
	Index(n int64) (int64, error)
	ID() string
}

type cryptoSource struct{}

func (cryptoSource) Index(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}

	return v.Int64(), nil
}

func (cryptoSource) ID() string {
	return "crypto/rand"
}

type DrawService struct {
	repo  DrawRepository
	conf  *config.DrawConfig
	locks *keylock.KeyLock[uint]
	rng   IndexSource
	now   func() time.Time
}

func NewDrawService(repo DrawRepository, conf *config.DrawConfig) *DrawService {
	if conf == nil {
		conf = &config.DrawConfig{}
	}

	return &DrawService{
		repo:  repo,
		conf:  conf,
		locks: keylock.New[uint](),
		rng:   cryptoSource{},
		now:   time.Now,
	}
}

// DrawActive draws on the raffle currently flagged active.
func (s *DrawService) DrawActive(ctx context.Context) (domain.DrawResult, error) {
	raffle, err := s.repo.FindActive(ctx)
	if err != nil {
		return domain.DrawResult{}, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	return s.Draw(ctx, raffle.ID)
}

type drawTrace struct {
	index     int64
	available int64
}

// Draw picks one winner among the participants of the raffle that have not won
// yet and awards them the next prize position. Draws on the same raffle are
// serialized, both in process and through a row lock on the raffle.
func (s *DrawService) Draw(ctx context.Context, raffleID uint) (domain.DrawResult, error) {
	unlock := s.locks.Lock(raffleID)
	defer unlock()

	var (
		result domain.DrawResult
		trace  drawTrace
	)

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		result, trace, err = s.draw(ctx, raffleID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSelectionInconsistent) {
			zap.L().Error("draw selection inconsistent",
				zap.Uint("raffle_id", raffleID),
				zap.Error(err),
			)
		}

		return domain.DrawResult{}, fmt.Errorf("s.repo.Transaction -> %w", err)
	}

	zap.L().Info("raffle draw completed",
		zap.Uint("raffle_id", raffleID),
		zap.Uint("winner_id", result.Winner.ID),
		zap.String("winner_name", result.Winner.FullName),
		zap.String("winner_dni", result.Winner.DNI),
		zap.Int("position", result.Position),
		zap.String("prize", result.Winner.PrizeName),
		zap.Int64("total_participants", result.TotalParticipants),
		zap.Int64("available_participants", result.AvailableParticipants),
		zap.Int64("previous_winners", result.PreviousWinners),
		zap.Int64("random_index", trace.index),
		zap.Float64("probability", 1/float64(trace.available)),
		zap.String("random_source", s.rng.ID()),
		zap.Time("timestamp", result.Timestamp),
	)

	return result, nil
}

func (s *DrawService) draw(ctx context.Context, raffleID uint) (domain.DrawResult, drawTrace, error) {
	raffle, err := s.repo.LockForDraw(ctx, raffleID)
	if err != nil {
		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.repo.LockForDraw -> %w", err)
	}
	if !raffle.Active {
		return domain.DrawResult{}, drawTrace{}, ErrNoActiveRaffle
	}

	available, err := s.repo.CountEligible(ctx, raffleID)
	if err != nil {
		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.repo.CountEligible -> %w", err)
	}
	if available == 0 {
		return domain.DrawResult{}, drawTrace{}, ErrNoEligibleParticipants
	}

	index, err := s.rng.Index(available)
	if err != nil {
		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.rng.Index -> %w", err)
	}

	participant, err := s.repo.FindEligibleAt(ctx, raffleID, index)
	if err != nil {
		if errors.Is(err, ErrParticipantNotFound) {
			return domain.DrawResult{}, drawTrace{}, fmt.Errorf("no participant at offset %d of %d -> %w", index, available, ErrSelectionInconsistent)
		}

		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.repo.FindEligibleAt -> %w", err)
	}

	total, err := s.repo.CountParticipants(ctx, raffleID)
	if err != nil {
		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.repo.CountParticipants -> %w", err)
	}
	previous := total - available

	assignments, err := s.repo.FindPrizeAssignments(ctx, raffleID)
	if err != nil {
		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.repo.FindPrizeAssignments -> %w", err)
	}

	position, prizeName, err := s.nextPosition(assignments, previous)
	if err != nil {
		return domain.DrawResult{}, drawTrace{}, err
	}

	if err = s.repo.MarkWinner(ctx, participant.ID, position); err != nil {
		if errors.Is(err, ErrAlreadyWon) {
			return domain.DrawResult{}, drawTrace{}, fmt.Errorf("participant %d already won -> %w", participant.ID, ErrSelectionInconsistent)
		}

		return domain.DrawResult{}, drawTrace{}, fmt.Errorf("s.repo.MarkWinner -> %w", err)
	}

	result := domain.DrawResult{
		RaffleID: raffleID,
		Winner: domain.Winner{
			ID:         participant.ID,
			FullName:   participant.FullName,
			DNI:        participant.DNI,
			Phone:      participant.Phone,
			Location:   participant.Location,
			Province:   participant.Province,
			CardNumber: participant.CardNumber,
			Position:   position,
			PrizeName:  prizeName,
		},
		Position:              position,
		TotalParticipants:     total,
		AvailableParticipants: available,
		PreviousWinners:       previous,
		Timestamp:             s.now(),
	}

	return result, drawTrace{index: index, available: available}, nil
}

// nextPosition returns the position awarded by the draw that follows previous
// wins. Positions are consumed from the highest number down.
func (s *DrawService) nextPosition(assignments []domain.PrizeAssignment, previous int64) (int, string, error) {
	if len(assignments) == 0 {
		if s.conf.AllowWithoutPrizes {
			return int(previous) + 1, "", nil
		}

		return 0, "", ErrNoPrizes
	}

	sorted := make([]domain.PrizeAssignment, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})

	if previous >= int64(len(sorted)) {
		return 0, "", ErrAllPrizesAwarded
	}

	awarded := sorted[previous]

	return awarded.Position, awarded.Prize.Name, nil
}
