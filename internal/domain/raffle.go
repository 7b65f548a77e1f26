package domain

import "time"

type Raffle struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Date        time.Time         `json:"date"`
	Active      bool              `json:"active"`
	Assignments []PrizeAssignment `json:"prizes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type Prize struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PrizeAssignment binds a prize to a ranked position inside one raffle.
// Positions are unique per raffle.
type PrizeAssignment struct {
	RaffleID uint  `json:"raffle_id"`
	PrizeID  uint  `json:"prize_id"`
	Position int   `json:"position"`
	Prize    Prize `json:"prize"`
}
