package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRaffleNotFound      = errors.New("raffle not found")
	ErrNoActiveRaffle      = errors.New("no active raffle")
	ErrPrizeNotFound       = errors.New("prize not found")
	ErrPositionTaken       = errors.New("position already assigned in this raffle")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyWon          = errors.New("participant already has a won position")
)

type Raffle struct {
	ID               uint              `gorm:"primaryKey"`
	Name             string            `gorm:"not null"`
	Date             time.Time         `gorm:"type:date;not null"`
	Active           bool              `gorm:"not null;default:false;index"`
	PrizeAssignments []PrizeAssignment `gorm:"foreignKey:RaffleID;constraint:OnDelete:CASCADE"`
	Participants     []Participant     `gorm:"foreignKey:RaffleID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type txKey struct{}

type RaffleDAO struct {
	db *gorm.DB
}

func NewRaffleDAO(db *gorm.DB) *RaffleDAO {
	return &RaffleDAO{
		db: db,
	}
}

// conn returns the transaction carried by ctx, if any.
func (d *RaffleDAO) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}

	return d.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction. Every RaffleDAO call made
// with the ctx handed to fn joins that transaction.
func (d *RaffleDAO) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (d *RaffleDAO) InsertRaffle(ctx context.Context, raffle Raffle) (Raffle, error) {
	result := d.conn(ctx).Create(&raffle)
	if result.Error != nil {
		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindRaffleByID(ctx context.Context, id uint) (Raffle, error) {
	var raffle Raffle

	result := d.conn(ctx).First(&raffle, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrRaffleNotFound
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

// LockRaffle reads the raffle row with FOR UPDATE. Only meaningful inside Transaction.
func (d *RaffleDAO) LockRaffle(ctx context.Context, id uint) (Raffle, error) {
	var raffle Raffle

	result := d.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&raffle, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrRaffleNotFound
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindActiveRaffle(ctx context.Context) (Raffle, error) {
	var raffle Raffle

	result := d.conn(ctx).Where("active = ?", true).Order("id ASC").First(&raffle)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrNoActiveRaffle
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) RaffleExists(ctx context.Context, id uint) (bool, error) {
	var count int64

	result := d.conn(ctx).Model(&Raffle{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// SetRaffleActive flips the active flag. Activating a raffle deactivates every other one.
func (d *RaffleDAO) SetRaffleActive(ctx context.Context, id uint, active bool) (Raffle, error) {
	var raffle Raffle

	err := d.Transaction(ctx, func(ctx context.Context) error {
		var err error
		raffle, err = d.LockRaffle(ctx, id)
		if err != nil {
			return err
		}

		if active {
			result := d.conn(ctx).Model(&Raffle{}).
				Where("id <> ? AND active = ?", id, true).
				Update("active", false)
			if result.Error != nil {
				return result.Error
			}
		}

		raffle.Active = active
		return d.conn(ctx).Model(&raffle).Update("active", active).Error
	})
	if err != nil {
		return Raffle{}, err
	}

	return raffle, nil
}
