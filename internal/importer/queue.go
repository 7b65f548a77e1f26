package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/vietanh2810/sorteo-api/internal/domain"
	"github.com/vietanh2810/sorteo-api/internal/logger"
)

const ChunkTopic = "participants.import.chunks"

var ErrQueueNotStarted = errors.New("chunk queue is not started")

type ChunkHandler interface {
	Process(ctx context.Context, chunk domain.ImportChunk) (ChunkReport, error)
}

// ChunkQueue carries import chunks from the pipeline to a pool of workers over
// an in-process pub/sub. Messages are acked on receipt, so a failed chunk is
// never redelivered.
type ChunkQueue struct {
	pubSub  *gochannel.GoChannel
	handler ChunkHandler
	workers int

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// counts chunks accepted by Publish until a worker is done with them
	inflight sync.WaitGroup
}

func NewChunkQueue(handler ChunkHandler, workers int) *ChunkQueue {
	if workers < 1 {
		workers = 1
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: int64(workers)},
		logger.NewWatermillAdapter(zap.L()),
	)

	return &ChunkQueue{
		pubSub:  pubSub,
		handler: handler,
		workers: workers,
	}
}

// Start subscribes to the chunk topic and launches the workers. Publish is
// refused before Start and after Close.
func (q *ChunkQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return nil
	}

	// the subscription ends with Close, not with ctx, so accepted chunks are
	// never dropped by the pub/sub
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	messages, err := q.pubSub.Subscribe(subCtx, ChunkTopic)
	if err != nil {
		cancel()
		return fmt.Errorf("q.pubSub.Subscribe -> %w", err)
	}

	jobs := make(chan domain.ImportChunk)
	// chunks already received are stored even while the process shuts down
	workCtx := context.WithoutCancel(ctx)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(jobs)

		for msg := range messages {
			chunk, err := decodeChunk(msg)
			msg.Ack()
			if err != nil {
				zap.L().Error("dropping undecodable import chunk",
					zap.String("message_uuid", msg.UUID),
					zap.Error(err),
				)
				q.inflight.Done()
				continue
			}

			jobs <- chunk
		}
	}()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()

			for chunk := range jobs {
				// errors are already logged by the handler; nothing retries them
				_, _ = q.handler.Process(workCtx, chunk)
				q.inflight.Done()
			}
		}()
	}

	q.started = true
	q.cancel = cancel

	return nil
}

// Publish hands a chunk to the workers. A nil error means the chunk will be
// processed, even if Close is called right after.
func (q *ChunkQueue) Publish(chunk domain.ImportChunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return ErrQueueNotStarted
	}
	q.inflight.Add(1)
	q.mu.Unlock()

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("batch_id", chunk.BatchID)
	msg.Metadata.Set("sequence", strconv.Itoa(chunk.Sequence))

	if err = q.pubSub.Publish(ChunkTopic, msg); err != nil {
		q.inflight.Done()
		return fmt.Errorf("q.pubSub.Publish -> %w", err)
	}

	return nil
}

// Close refuses new chunks, waits until every accepted chunk has been
// processed and then shuts the pub/sub and the workers down.
func (q *ChunkQueue) Close() error {
	q.mu.Lock()
	q.started = false
	q.mu.Unlock()

	q.inflight.Wait()

	err := q.pubSub.Close()

	q.wg.Wait()

	q.mu.Lock()
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.mu.Unlock()

	if err != nil {
		return fmt.Errorf("q.pubSub.Close -> %w", err)
	}

	return nil
}

func decodeChunk(msg *message.Message) (domain.ImportChunk, error) {
	var chunk domain.ImportChunk
	if err := json.Unmarshal(msg.Payload, &chunk); err != nil {
		return domain.ImportChunk{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return chunk, nil
}
