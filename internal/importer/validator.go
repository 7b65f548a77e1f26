package importer

import (
	"context"
	"errors"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

var (
	errRaffleMissing    = errors.New("raffle does not exist")
	errRaffleUnverified = errors.New("raffle could not be verified")
)

// Error keys reported by ValidateStruct, in declaration order.
var recordFields = []string{"raffle_id", "dni", "full_name", "phone", "location", "province", "carton_number"}

type RaffleLookup interface {
	RaffleExists(ctx context.Context, id uint) (bool, error)
}

type ValidationResult struct {
	Valid  bool
	Errors []string
}

// RowValidator checks canonical records. Raffle existence answers are cached
// for the lifetime of the validator, which is one import or one chunk.
type RowValidator struct {
	lookup RaffleLookup

	mu    sync.Mutex
	known map[uint]bool
}

func NewRowValidator(lookup RaffleLookup) *RowValidator {
	return &RowValidator{
		lookup: lookup,
		known:  make(map[uint]bool),
	}
}

func (v *RowValidator) Validate(ctx context.Context, rec domain.ParticipantRecord) ValidationResult {
	err := validation.ValidateStruct(
		&rec,
		validation.Field(&rec.RaffleID, validation.Required, validation.By(v.raffleRule(ctx))),
		validation.Field(&rec.DNI, validation.Required, validation.RuneLength(0, 32)),
		validation.Field(&rec.FullName, validation.Required, validation.RuneLength(0, 255)),
		validation.Field(&rec.Phone, validation.RuneLength(0, 64)),
		validation.Field(&rec.Location, validation.RuneLength(0, 255)),
		validation.Field(&rec.Province, validation.RuneLength(0, 255)),
		validation.Field(&rec.CardNumber, validation.RuneLength(0, 64)),
	)
	if err == nil {
		return ValidationResult{Valid: true}
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return ValidationResult{Errors: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, field := range recordFields {
		if e, ok := fieldErrs[field]; ok {
			messages = append(messages, field+": "+e.Error())
		}
	}

	return ValidationResult{Errors: messages}
}

func (v *RowValidator) raffleRule(ctx context.Context) validation.RuleFunc {
	return func(value interface{}) error {
		id, _ := value.(uint)
		if id == 0 {
			return nil
		}

		v.mu.Lock()
		exists, ok := v.known[id]
		v.mu.Unlock()

		if !ok {
			var err error
			exists, err = v.lookup.RaffleExists(ctx, id)
			if err != nil {
				return errRaffleUnverified
			}

			v.mu.Lock()
			v.known[id] = exists
			v.mu.Unlock()
		}

		if !exists {
			return errRaffleMissing
		}

		return nil
	}
}
