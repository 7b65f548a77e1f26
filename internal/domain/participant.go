package domain

import "time"

type Participant struct {
	ID          uint      `json:"id"`
	RaffleID    uint      `json:"raffle_id"`
	FullName    string    `json:"full_name"`
	DNI         string    `json:"dni"`
	Phone       string    `json:"phone"`
	Location    string    `json:"location"`
	Province    string    `json:"province"`
	CardNumber  string    `json:"carton_number"`
	WonPosition *int      `json:"ganador_en"` // nil until drawn
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Participant) HasWon() bool {
	return p.WonPosition != nil
}

// ParticipantRecord is the canonical shape of one imported CSV row.
type ParticipantRecord struct {
	RaffleID   uint   `json:"raffle_id"`
	DNI        string `json:"dni"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Province   string `json:"province"`
	CardNumber string `json:"carton_number"`
}

func (r ParticipantRecord) ToParticipant(now time.Time) Participant {
	return Participant{
		RaffleID:   r.RaffleID,
		FullName:   r.FullName,
		DNI:        r.DNI,
		Phone:      r.Phone,
		Location:   r.Location,
		Province:   r.Province,
		CardNumber: r.CardNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
