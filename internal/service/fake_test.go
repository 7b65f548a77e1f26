package service

import (
	"context"
	"sync"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

// memoryStore is an in-memory stand-in for repository.RaffleRepository.
type memoryStore struct {
	mu           sync.Mutex
	raffles      map[uint]domain.Raffle
	assignments  map[uint][]domain.PrizeAssignment
	participants []domain.Participant
	nextID       uint

	markErr      error
	skipEligible bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		raffles:     make(map[uint]domain.Raffle),
		assignments: make(map[uint][]domain.PrizeAssignment),
	}
}

func (m *memoryStore) addRaffle(id uint, active bool, positions ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.raffles[id] = domain.Raffle{ID: id, Name: "raffle", Active: active}
	for _, p := range positions {
		m.assignments[id] = append(m.assignments[id], domain.PrizeAssignment{
			RaffleID: id,
			PrizeID:  uint(p),
			Position: p,
			Prize:    domain.Prize{ID: uint(p), Name: prizeName(p)},
		})
	}
}

func prizeName(position int) string {
	return "prize-" + string(rune('A'+position%26))
}

func (m *memoryStore) addParticipants(raffleID uint, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < n; i++ {
		m.nextID++
		m.participants = append(m.participants, domain.Participant{
			ID:       m.nextID,
			RaffleID: raffleID,
			FullName: "participant",
			DNI:      "30111222",
		})
	}
}

func (m *memoryStore) wonPositions(raffleID uint) map[uint]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	won := make(map[uint]int)
	for _, p := range m.participants {
		if p.RaffleID == raffleID && p.WonPosition != nil {
			won[p.ID] = *p.WonPosition
		}
	}

	return won
}

func (m *memoryStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memoryStore) FindByID(_ context.Context, id uint) (domain.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.raffles[id]
	if !ok {
		return domain.Raffle{}, ErrRaffleNotFound
	}

	return r, nil
}

func (m *memoryStore) LockForDraw(ctx context.Context, id uint) (domain.Raffle, error) {
	return m.FindByID(ctx, id)
}

func (m *memoryStore) FindActive(_ context.Context) (domain.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		found domain.Raffle
		ok    bool
	)
	for id, r := range m.raffles {
		if r.Active && (!ok || id < found.ID) {
			found, ok = r, true
		}
	}
	if !ok {
		return domain.Raffle{}, ErrNoActiveRaffle
	}

	return found, nil
}

func (m *memoryStore) SetActive(_ context.Context, id uint, active bool) (domain.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.raffles[id]
	if !ok {
		return domain.Raffle{}, ErrRaffleNotFound
	}

	if active {
		for otherID, other := range m.raffles {
			other.Active = false
			m.raffles[otherID] = other
		}
	}
	r.Active = active
	m.raffles[id] = r

	return r, nil
}

func (m *memoryStore) FindPrizeAssignments(_ context.Context, raffleID uint) ([]domain.PrizeAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.PrizeAssignment(nil), m.assignments[raffleID]...), nil
}

func (m *memoryStore) count(raffleID *uint, won *bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, p := range m.participants {
		if raffleID != nil && p.RaffleID != *raffleID {
			continue
		}
		if won != nil && p.HasWon() != *won {
			continue
		}
		n++
	}

	return n
}

func (m *memoryStore) CountEligible(_ context.Context, raffleID uint) (int64, error) {
	won := false
	return m.count(&raffleID, &won), nil
}

func (m *memoryStore) CountParticipants(_ context.Context, raffleID uint) (int64, error) {
	return m.count(&raffleID, nil), nil
}

func (m *memoryStore) CountWinners(_ context.Context, raffleID *uint) (int64, error) {
	won := true
	return m.count(raffleID, &won), nil
}

func (m *memoryStore) CountEligibleInScope(_ context.Context, raffleID *uint) (int64, error) {
	won := false
	return m.count(raffleID, &won), nil
}

func (m *memoryStore) FindEligibleAt(_ context.Context, raffleID uint, offset int64) (domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.skipEligible {
		return domain.Participant{}, ErrParticipantNotFound
	}

	var i int64
	for _, p := range m.participants {
		if p.RaffleID != raffleID || p.HasWon() {
			continue
		}
		if i == offset {
			return p, nil
		}
		i++
	}

	return domain.Participant{}, ErrParticipantNotFound
}

func (m *memoryStore) MarkWinner(_ context.Context, participantID uint, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.markErr != nil {
		return m.markErr
	}

	for i := range m.participants {
		if m.participants[i].ID != participantID {
			continue
		}
		if m.participants[i].HasWon() {
			return ErrAlreadyWon
		}
		pos := position
		m.participants[i].WonPosition = &pos
		return nil
	}

	return ErrAlreadyWon
}

func (m *memoryStore) ResetWinners(_ context.Context, raffleID *uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for i := range m.participants {
		if raffleID != nil && m.participants[i].RaffleID != *raffleID {
			continue
		}
		if m.participants[i].WonPosition != nil {
			m.participants[i].WonPosition = nil
			n++
		}
	}

	return n, nil
}

// fixedSource replays values, wrapping each into [0, n).
type fixedSource struct {
	mu     sync.Mutex
	values []int64
	next   int
}

func (f *fixedSource) Index(n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := f.values[f.next%len(f.values)]
	f.next++

	return v % n, nil
}

func (f *fixedSource) ID() string {
	return "fixed"
}
