package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Prize struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PrizeAssignment struct {
	ID        uint  `gorm:"primaryKey"`
	RaffleID  uint  `gorm:"not null;uniqueIndex:uni_prize_assignments_raffle_position,priority:1"`
	PrizeID   uint  `gorm:"not null;index"`
	Prize     Prize `gorm:"foreignKey:PrizeID;constraint:OnDelete:CASCADE"`
	Position  int   `gorm:"not null;uniqueIndex:uni_prize_assignments_raffle_position,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *RaffleDAO) InsertPrize(ctx context.Context, prize Prize) (Prize, error) {
	result := d.conn(ctx).Create(&prize)
	if result.Error != nil {
		return Prize{}, result.Error
	}

	return prize, nil
}

func (d *RaffleDAO) AssignPrize(ctx context.Context, assignment PrizeAssignment) (PrizeAssignment, error) {
	result := d.conn(ctx).Omit("Prize").Create(&assignment)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) {
			switch err.Code {
			case pgerrcode.UniqueViolation:
				return PrizeAssignment{}, ErrPositionTaken
			case pgerrcode.ForeignKeyViolation:
				if err.ConstraintName == "fk_raffles_prize_assignments" {
					return PrizeAssignment{}, ErrRaffleNotFound
				}
				return PrizeAssignment{}, ErrPrizeNotFound
			}
		}

		return PrizeAssignment{}, result.Error
	}

	return assignment, nil
}

// FindPrizeAssignments returns the raffle's assignments with their prize, highest position first.
func (d *RaffleDAO) FindPrizeAssignments(ctx context.Context, raffleID uint) ([]PrizeAssignment, error) {
	var assignments []PrizeAssignment

	result := d.conn(ctx).
		Preload("Prize").
		Where("raffle_id = ?", raffleID).
		Order("position DESC").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}

	return assignments, nil
}
