package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Participant struct {
	ID          uint   `gorm:"primaryKey"`
	RaffleID    uint   `gorm:"not null;index:idx_participants_raffle_dni,priority:1;index:idx_participants_raffle_card,priority:1;index:idx_participants_raffle_won,priority:1"`
	FullName    string `gorm:"not null"`
	DNI         string `gorm:"column:dni;size:64;not null;index:idx_participants_raffle_dni,priority:2"`
	Phone       string `gorm:"size:64"`
	Location    string
	Province    string
	CardNumber  string `gorm:"size:128;index:idx_participants_raffle_card,priority:2"`
	WonPosition *int   `gorm:"index:idx_participants_raffle_won,priority:2"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParticipantFilter scopes participant queries. A nil RaffleID spans every raffle;
// a nil Won matches winners and non-winners alike.
type ParticipantFilter struct {
	RaffleID *uint
	Won      *bool
}

func (f ParticipantFilter) apply(db *gorm.DB) *gorm.DB {
	if f.RaffleID != nil {
		db = db.Where("raffle_id = ?", *f.RaffleID)
	}

	if f.Won != nil {
		if *f.Won {
			db = db.Where("won_position IS NOT NULL")
		} else {
			db = db.Where("won_position IS NULL")
		}
	}

	return db
}

// InsertParticipants writes all rows in a single INSERT statement.
func (d *RaffleDAO) InsertParticipants(ctx context.Context, participants []Participant) (int64, error) {
	if len(participants) == 0 {
		return 0, nil
	}

	result := d.conn(ctx).Create(&participants)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.ForeignKeyViolation {
			return 0, ErrRaffleNotFound
		}

		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (d *RaffleDAO) CountParticipants(ctx context.Context, filter ParticipantFilter) (int64, error) {
	var count int64

	result := filter.apply(d.conn(ctx).Model(&Participant{})).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// FindEligibleAt returns the non-winning participant at offset within the raffle,
// ordered by primary key so that counts and offsets agree.
func (d *RaffleDAO) FindEligibleAt(ctx context.Context, raffleID uint, offset int64) (Participant, error) {
	var participants []Participant

	result := d.conn(ctx).
		Where("raffle_id = ? AND won_position IS NULL", raffleID).
		Order("id ASC").
		Offset(int(offset)).
		Limit(1).
		Find(&participants)
	if result.Error != nil {
		return Participant{}, result.Error
	}

	if len(participants) == 0 {
		return Participant{}, ErrParticipantNotFound
	}

	return participants[0], nil
}

// MarkWinner sets won_position only while it is still NULL.
func (d *RaffleDAO) MarkWinner(ctx context.Context, participantID uint, position int) error {
	result := d.conn(ctx).Model(&Participant{}).
		Where("id = ? AND won_position IS NULL", participantID).
		Update("won_position", position)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAlreadyWon
	}

	return nil
}

// ResetWinners clears won_position for every winner in scope with one UPDATE.
func (d *RaffleDAO) ResetWinners(ctx context.Context, raffleID *uint) (int64, error) {
	won := true
	filter := ParticipantFilter{RaffleID: raffleID, Won: &won}

	result := filter.apply(d.conn(ctx).Model(&Participant{})).
		Update("won_position", gorm.Expr("NULL"))
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
