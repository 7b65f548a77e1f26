package request

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var errPositiveID = errors.New("must be a positive integer")

type ResetWinnersRequest struct {
	RaffleID string `form:"raffle_id" json:"raffle_id"`
}

func (req *ResetWinnersRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RaffleID, is.Int, validation.By(positiveID)),
	)
}

// Scope returns nil when no raffle was given, meaning every raffle.
func (req *ResetWinnersRequest) Scope() *uint {
	if req.RaffleID == "" {
		return nil
	}

	id, _ := parseID(req.RaffleID)
	return &id
}

type ActivateRaffleRequest struct {
	Active *bool `json:"active"`
}

func (req *ActivateRaffleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Active, validation.NotNil),
	)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}

func positiveID(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	id, err := parseID(s)
	if err != nil || id == 0 {
		return errPositiveID
	}

	return nil
}
