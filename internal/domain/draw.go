package domain

import "time"

type Winner struct {
	ID         uint   `json:"id"`
	FullName   string `json:"full_name"`
	DNI        string `json:"dni"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Province   string `json:"province"`
	CardNumber string `json:"carton_number"`
	Position   int    `json:"ganador_en"`
	PrizeName  string `json:"premio,omitempty"`
}

type DrawResult struct {
	RaffleID              uint      `json:"raffle_id"`
	Winner                Winner    `json:"winner"`
	Position              int       `json:"posicion_sorteo"`
	TotalParticipants     int64     `json:"total_participants"`
	AvailableParticipants int64     `json:"available_participants"`
	PreviousWinners       int64     `json:"previous_winners"`
	Timestamp             time.Time `json:"timestamp"`
}

type ResetResult struct {
	Message                string `json:"message"`
	ResetCount             int64  `json:"reset_count"`
	RaffleID               *uint  `json:"raffle_id"`
	RemainingEligibleCount int64  `json:"remaining_eligible_count"`
}
