package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type ImportParticipantsRequest struct {
	RaffleID string `form:"raffle_id"`
}

func (req *ImportParticipantsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RaffleID, validation.Required, is.Int, validation.By(positiveID)),
	)
}

func (req *ImportParticipantsRequest) ID() uint {
	id, _ := parseID(req.RaffleID)
	return id
}
