package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietanh2810/sorteo-api/internal/config"
	"github.com/vietanh2810/sorteo-api/internal/domain"
)

type ParticipantStore interface {
	InsertParticipants(ctx context.Context, participants []domain.Participant) (int64, error)
}

// ChunkPublisher hands a normalized chunk to the asynchronous workers.
type ChunkPublisher interface {
	Publish(chunk domain.ImportChunk) error
}

type Pipeline struct {
	store  ParticipantStore
	lookup RaffleLookup
	queue  ChunkPublisher

	mu   sync.RWMutex
	conf config.ImportConfig

	now        func() time.Time
	newBatchID func() string
}

func NewPipeline(store ParticipantStore, lookup RaffleLookup, queue ChunkPublisher, conf config.ImportConfig) *Pipeline {
	return &Pipeline{
		store:      store,
		lookup:     lookup,
		queue:      queue,
		conf:       conf,
		now:        time.Now,
		newBatchID: uuid.NewString,
	}
}

// SetConfig swaps the import settings. Imports already running keep the
// settings they started with.
func (p *Pipeline) SetConfig(conf config.ImportConfig) {
	p.mu.Lock()
	p.conf = conf
	p.mu.Unlock()
}

func (p *Pipeline) config() config.ImportConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.conf
}

// Import streams file into the participants of raffleID. The file is always
// closed. Row problems never abort the import: they are counted and reported.
func (p *Pipeline) Import(ctx context.Context, file io.ReadCloser, raffleID uint) domain.ImportResult {
	defer func() {
		if err := file.Close(); err != nil {
			zap.L().Warn("failed to close import file", zap.Error(err))
		}
	}()

	conf := p.config()

	result := domain.ImportResult{
		Status: domain.ImportStatusOK,
		Mode:   domain.ImportMode(conf.Mode),
		Errors: []domain.ImportError{},
	}

	br := bufio.NewReader(file)

	header, delimiter, err := readHeader(br)
	if err != nil {
		zap.L().Warn("participant import rejected", zap.Uint("raffle_id", raffleID), zap.Error(err))

		result.Status = domain.ImportStatusError
		result.Errors = append(result.Errors, domain.ImportError{Line: 0, Error: err.Error()})
		return result
	}

	zap.L().Info("participant import started",
		zap.Uint("raffle_id", raffleID),
		zap.Strings("headers", header),
		zap.String("delimiter", string(delimiter)),
		zap.String("mode", conf.Mode),
	)

	rows := newRowReader(br, header, delimiter)

	if conf.Mode == config.ImportModeAsync {
		p.dispatch(ctx, rows, raffleID, conf, &result)
	} else {
		p.importSync(ctx, rows, raffleID, conf, &result)
	}

	zap.L().Info("participant import finished",
		zap.Uint("raffle_id", raffleID),
		zap.String("mode", conf.Mode),
		zap.String("batch_id", result.BatchID),
		zap.Int("processed", result.Processed),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed),
		zap.Int("chunks", result.Chunks),
	)

	return result
}

func (p *Pipeline) importSync(ctx context.Context, rows *rowReader, raffleID uint, conf config.ImportConfig, result *domain.ImportResult) {
	validator := NewRowValidator(p.lookup)
	batch := make([]domain.Participant, 0, conf.SyncChunkSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		inserted, err := p.store.InsertParticipants(ctx, batch)
		if err != nil {
			return fmt.Errorf("p.store.InsertParticipants -> %w", err)
		}

		result.Imported += int(inserted)
		result.Chunks++
		batch = batch[:0]

		zap.L().Debug("participant chunk inserted",
			zap.Uint("raffle_id", raffleID),
			zap.Int64("chunk_size", inserted),
			zap.Int("imported_total", result.Imported),
			zap.Int("processed", result.Processed),
		)

		return nil
	}

	for {
		row, line, err := rows.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.fault(raffleID, line, err, result)
			return
		}

		result.Processed++

		rec := NormalizeRow(row, raffleID)
		if v := validator.Validate(ctx, rec); !v.Valid {
			result.Failed++
			if len(result.Errors) < conf.ErrorLimit {
				result.Errors = append(result.Errors, domain.ImportError{
					Line:  line,
					Error: strings.Join(v.Errors, "; "),
				})
			}
			continue
		}

		batch = append(batch, rec.ToParticipant(p.now()))
		if len(batch) >= conf.SyncChunkSize {
			if err = flush(); err != nil {
				p.fault(raffleID, line, err, result)
				return
			}
		}
	}

	if err := flush(); err != nil {
		p.fault(raffleID, rows.line, err, result)
	}
}

// dispatch normalizes rows and publishes them in chunks without validating
// them. Workers validate and insert each chunk on their own.
func (p *Pipeline) dispatch(ctx context.Context, rows *rowReader, raffleID uint, conf config.ImportConfig, result *domain.ImportResult) {
	result.BatchID = p.newBatchID()
	batch := make([]domain.ParticipantRecord, 0, conf.AsyncChunkSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		chunk := domain.ImportChunk{
			BatchID:  result.BatchID,
			Sequence: result.Chunks + 1,
			RaffleID: raffleID,
			Records:  batch,
		}
		if err := p.queue.Publish(chunk); err != nil {
			return fmt.Errorf("p.queue.Publish -> %w", err)
		}

		result.Chunks++
		batch = make([]domain.ParticipantRecord, 0, conf.AsyncChunkSize)

		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			p.fault(raffleID, rows.line, err, result)
			return
		}

		row, line, err := rows.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.fault(raffleID, line, err, result)
			return
		}

		result.Processed++
		batch = append(batch, NormalizeRow(row, raffleID))

		if len(batch) >= conf.AsyncChunkSize {
			if err = flush(); err != nil {
				p.fault(raffleID, line, err, result)
				return
			}
		}
	}

	if err := flush(); err != nil {
		p.fault(raffleID, rows.line, err, result)
	}
}

// fault records a mid-stream failure. Chunks stored before it stay stored.
func (p *Pipeline) fault(raffleID uint, line int, err error, result *domain.ImportResult) {
	zap.L().Error("participant import interrupted",
		zap.Uint("raffle_id", raffleID),
		zap.Int("line", line),
		zap.Int("processed", result.Processed),
		zap.Error(err),
	)

	result.Errors = append(result.Errors, domain.ImportError{Line: line, Error: err.Error()})
}
