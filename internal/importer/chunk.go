package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

type ChunkReport struct {
	BatchID  string
	Sequence int
	RaffleID uint
	Inserted int64
	Failed   int
}

// ChunkProcessor validates and stores one chunk published by an asynchronous
// import. A storage failure drops the whole chunk and is not retried.
type ChunkProcessor struct {
	store  ParticipantStore
	lookup RaffleLookup
	now    func() time.Time
}

func NewChunkProcessor(store ParticipantStore, lookup RaffleLookup) *ChunkProcessor {
	return &ChunkProcessor{
		store:  store,
		lookup: lookup,
		now:    time.Now,
	}
}

func (c *ChunkProcessor) Process(ctx context.Context, chunk domain.ImportChunk) (ChunkReport, error) {
	report := ChunkReport{
		BatchID:  chunk.BatchID,
		Sequence: chunk.Sequence,
		RaffleID: chunk.RaffleID,
	}

	validator := NewRowValidator(c.lookup)
	now := c.now()

	valid := make([]domain.Participant, 0, len(chunk.Records))
	for i, rec := range chunk.Records {
		if v := validator.Validate(ctx, rec); !v.Valid {
			report.Failed++
			zap.L().Warn("invalid participant in import chunk",
				zap.String("batch_id", chunk.BatchID),
				zap.Int("chunk", chunk.Sequence),
				zap.Int("record", i),
				zap.String("dni", rec.DNI),
				zap.Strings("errors", v.Errors),
			)
			continue
		}

		valid = append(valid, rec.ToParticipant(now))
	}

	if len(valid) > 0 {
		inserted, err := c.store.InsertParticipants(ctx, valid)
		if err != nil {
			zap.L().Error("failed to store import chunk",
				zap.String("batch_id", chunk.BatchID),
				zap.Int("chunk", chunk.Sequence),
				zap.Uint("raffle_id", chunk.RaffleID),
				zap.Int("records", len(valid)),
				zap.Error(err),
			)

			return report, fmt.Errorf("c.store.InsertParticipants -> %w", err)
		}

		report.Inserted = inserted
	}

	zap.L().Info("import chunk processed",
		zap.String("batch_id", chunk.BatchID),
		zap.Int("chunk", chunk.Sequence),
		zap.Int64("inserted", report.Inserted),
		zap.Int("failed", report.Failed),
		zap.Uint("raffle_id", chunk.RaffleID),
	)

	return report, nil
}
