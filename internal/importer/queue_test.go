package importer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

type collectingHandler struct {
	mu     sync.Mutex
	chunks []domain.ImportChunk
	done   chan struct{}
	want   int
}

func (h *collectingHandler) Process(_ context.Context, chunk domain.ImportChunk) (ChunkReport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.chunks = append(h.chunks, chunk)
	if len(h.chunks) == h.want {
		close(h.done)
	}

	return ChunkReport{BatchID: chunk.BatchID, Sequence: chunk.Sequence, Inserted: int64(len(chunk.Records))}, nil
}

func TestChunkQueue_DeliversEveryChunk(t *testing.T) {
	handler := &collectingHandler{done: make(chan struct{}), want: 5}
	q := NewChunkQueue(handler, 3)
	require.NoError(t, q.Start(context.Background()))

	for i := 1; i <= 5; i++ {
		err := q.Publish(domain.ImportChunk{
			BatchID:  "batch-1",
			Sequence: i,
			RaffleID: 1,
			Records:  []domain.ParticipantRecord{{RaffleID: 1, DNI: "1", FullName: "Ñandú Pérez"}},
		})
		require.NoError(t, err)
	}

	select {
	case <-handler.done:
	case <-time.After(5 * time.Second):
		t.Fatal("chunks were not processed")
	}

	require.NoError(t, q.Close())

	handler.mu.Lock()
	defer handler.mu.Unlock()

	sequences := make([]int, 0, len(handler.chunks))
	for _, c := range handler.chunks {
		sequences = append(sequences, c.Sequence)
		assert.Equal(t, "Ñandú Pérez", c.Records[0].FullName)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, sequences)
}

func TestChunkQueue_PublishBeforeStart(t *testing.T) {
	q := NewChunkQueue(&collectingHandler{done: make(chan struct{})}, 1)

	err := q.Publish(domain.ImportChunk{BatchID: "b"})
	require.ErrorIs(t, err, ErrQueueNotStarted)
}

func TestChunkQueue_EndToEndWithProcessor(t *testing.T) {
	store := &memoryStore{}
	q := NewChunkQueue(NewChunkProcessor(store, newRaffleSet(1)), 2)
	require.NoError(t, q.Start(context.Background()))

	p := NewPipeline(store, newRaffleSet(1), q, testImportConfig("async"))
	result := p.Import(context.Background(), file(csvWith(fullHeader, 2500, validRow)), 1)
	require.Empty(t, result.Errors)
	require.Equal(t, 3, result.Chunks)

	assert.Eventually(t, func() bool {
		return store.total() == 2500
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, q.Close())
}

type countingHandler struct {
	processed atomic.Int64
}

func (h *countingHandler) Process(_ context.Context, chunk domain.ImportChunk) (ChunkReport, error) {
	time.Sleep(time.Millisecond)
	h.processed.Add(1)

	return ChunkReport{BatchID: chunk.BatchID, Sequence: chunk.Sequence}, nil
}

func TestChunkQueue_CloseDrainsAcceptedChunks(t *testing.T) {
	for round := 0; round < 10; round++ {
		handler := &countingHandler{}
		q := NewChunkQueue(handler, 4)
		require.NoError(t, q.Start(context.Background()))

		const chunks = 50
		for i := 1; i <= chunks; i++ {
			require.NoError(t, q.Publish(domain.ImportChunk{BatchID: "batch-drain", Sequence: i, RaffleID: 1}))
		}

		require.NoError(t, q.Close())
		assert.Equal(t, int64(chunks), handler.processed.Load(), "round %d", round)

		err := q.Publish(domain.ImportChunk{BatchID: "batch-drain", Sequence: chunks + 1})
		require.ErrorIs(t, err, ErrQueueNotStarted)
	}
}

func TestChunkQueue_CloseDrainsAfterStartContextIsCancelled(t *testing.T) {
	handler := &countingHandler{}
	q := NewChunkQueue(handler, 2)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Start(ctx))

	for i := 1; i <= 20; i++ {
		require.NoError(t, q.Publish(domain.ImportChunk{BatchID: "batch-signal", Sequence: i, RaffleID: 1}))
	}
	cancel()

	require.NoError(t, q.Close())
	assert.Equal(t, int64(20), handler.processed.Load())
}
