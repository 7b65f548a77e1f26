package importer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

var errStorage = errors.New("storage unavailable")

type memoryStore struct {
	mu      sync.Mutex
	batches [][]domain.Participant
	calls   int
	failOn  int
}

func (m *memoryStore) InsertParticipants(_ context.Context, participants []domain.Participant) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.failOn != 0 && m.calls == m.failOn {
		return 0, errStorage
	}

	m.batches = append(m.batches, append([]domain.Participant(nil), participants...))

	return int64(len(participants)), nil
}

func (m *memoryStore) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, b := range m.batches {
		n += len(b)
	}

	return n
}

func (m *memoryStore) batchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	sizes := make([]int, len(m.batches))
	for i, b := range m.batches {
		sizes[i] = len(b)
	}

	return sizes
}

type raffleSet struct {
	mu      sync.Mutex
	ids     map[uint]bool
	lookups int
	err     error
}

func newRaffleSet(ids ...uint) *raffleSet {
	s := &raffleSet{ids: make(map[uint]bool)}
	for _, id := range ids {
		s.ids[id] = true
	}

	return s
}

func (s *raffleSet) RaffleExists(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	if s.err != nil {
		return false, s.err
	}

	return s.ids[id], nil
}

type recordingPublisher struct {
	chunks []domain.ImportChunk
	err    error
}

func (p *recordingPublisher) Publish(chunk domain.ImportChunk) error {
	if p.err != nil {
		return p.err
	}

	p.chunks = append(p.chunks, chunk)

	return nil
}

// trackedFile is an io.ReadCloser that remembers whether it was closed.
type trackedFile struct {
	io.Reader
	closed bool
}

func (f *trackedFile) Close() error {
	f.closed = true
	return nil
}

func file(content string) *trackedFile {
	return &trackedFile{Reader: strings.NewReader(content)}
}

// brokenReader yields its data and then fails with err instead of io.EOF.
type brokenReader struct {
	data *strings.Reader
	err  error
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.data.Len() == 0 {
		return 0, r.err
	}

	return r.data.Read(p)
}
