package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/sorteo-api/internal/config"
)

func newDrawService(store *memoryStore, conf *config.DrawConfig) *DrawService {
	return NewDrawService(store, conf)
}

func TestDrawService_Draw_ConsumesPositionsDescending(t *testing.T) {
	store := newMemoryStore()
	store.addRaffle(1, true, 1, 10, 5)
	store.addParticipants(1, 100)

	svc := newDrawService(store, nil)
	ctx := context.Background()

	var positions []int
	for i := 0; i < 3; i++ {
		result, err := svc.Draw(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, int64(100), result.TotalParticipants)
		assert.Equal(t, int64(100-i), result.AvailableParticipants)
		assert.Equal(t, int64(i), result.PreviousWinners)
		assert.Equal(t, result.Position, result.Winner.Position)
		assert.Equal(t, prizeName(result.Position), result.Winner.PrizeName)
		assert.False(t, result.Timestamp.IsZero())

		positions = append(positions, result.Position)
	}
	assert.Equal(t, []int{10, 5, 1}, positions)

	_, err := svc.Draw(ctx, 1)
	require.ErrorIs(t, err, ErrAllPrizesAwarded)

	eligible, err := store.CountEligible(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(97), eligible)
}

func TestDrawService_Draw_NeverRedrawsAWinner(t *testing.T) {
	store := newMemoryStore()
	positions := make([]int, 20)
	for i := range positions {
		positions[i] = i + 1
	}
	store.addRaffle(1, true, positions...)
	store.addParticipants(1, 20)

	svc := newDrawService(store, nil)

	seen := make(map[uint]bool)
	awarded := make(map[int]bool)
	for i := 0; i < 20; i++ {
		result, err := svc.Draw(context.Background(), 1)
		require.NoError(t, err)

		assert.False(t, seen[result.Winner.ID], "participant %d drawn twice", result.Winner.ID)
		assert.False(t, awarded[result.Position], "position %d awarded twice", result.Position)
		seen[result.Winner.ID] = true
		awarded[result.Position] = true
	}

	_, err := svc.Draw(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoEligibleParticipants)
	assert.Len(t, store.wonPositions(1), 20)
}

func TestDrawService_Draw_PicksOffsetAmongEligible(t *testing.T) {
	store := newMemoryStore()
	store.addRaffle(1, true, 3, 2, 1)
	store.addParticipants(1, 5)

	svc := newDrawService(store, nil)
	svc.rng = &fixedSource{values: []int64{2}}

	first, err := svc.Draw(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(3), first.Winner.ID)

	// participant 3 is gone, so offset 2 now lands on participant 4
	second, err := svc.Draw(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(4), second.Winner.ID)
}

func TestDrawService_Draw_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(store *memoryStore)
		conf    *config.DrawConfig
		wantErr error
	}{
		{
			name:    "unknown raffle",
			setup:   func(store *memoryStore) {},
			wantErr: ErrRaffleNotFound,
		},
		{
			name: "inactive raffle",
			setup: func(store *memoryStore) {
				store.addRaffle(1, false, 1)
				store.addParticipants(1, 3)
			},
			wantErr: ErrNoActiveRaffle,
		},
		{
			name: "no participants",
			setup: func(store *memoryStore) {
				store.addRaffle(1, true, 1)
			},
			wantErr: ErrNoEligibleParticipants,
		},
		{
			name: "no prizes",
			setup: func(store *memoryStore) {
				store.addRaffle(1, true)
				store.addParticipants(1, 3)
			},
			wantErr: ErrNoPrizes,
		},
		{
			name: "offset fetch finds nothing",
			setup: func(store *memoryStore) {
				store.addRaffle(1, true, 1)
				store.addParticipants(1, 3)
				store.skipEligible = true
			},
			wantErr: ErrSelectionInconsistent,
		},
		{
			name: "winner claimed concurrently",
			setup: func(store *memoryStore) {
				store.addRaffle(1, true, 1)
				store.addParticipants(1, 3)
				store.markErr = ErrAlreadyWon
			},
			wantErr: ErrSelectionInconsistent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			tt.setup(store)

			_, err := newDrawService(store, tt.conf).Draw(context.Background(), 1)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.wonPositions(1))
		})
	}
}

func TestDrawService_Draw_StorageFailureIsNotInconsistency(t *testing.T) {
	store := newMemoryStore()
	store.addRaffle(1, true, 1)
	store.addParticipants(1, 3)
	store.markErr = errors.New("connection reset")

	_, err := newDrawService(store, nil).Draw(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSelectionInconsistent)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDrawService_Draw_WithoutPrizesWhenAllowed(t *testing.T) {
	store := newMemoryStore()
	store.addRaffle(1, true)
	store.addParticipants(1, 4)

	svc := newDrawService(store, &config.DrawConfig{AllowWithoutPrizes: true})

	for want := 1; want <= 4; want++ {
		result, err := svc.Draw(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, want, result.Position)
		assert.Empty(t, result.Winner.PrizeName)
	}

	_, err := svc.Draw(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoEligibleParticipants)
}

func TestDrawService_DrawActive(t *testing.T) {
	t.Run("resolves the active raffle", func(t *testing.T) {
		store := newMemoryStore()
		store.addRaffle(1, false, 1)
		store.addRaffle(2, true, 7)
		store.addParticipants(1, 2)
		store.addParticipants(2, 2)

		result, err := newDrawService(store, nil).DrawActive(context.Background())
		require.NoError(t, err)

		assert.Equal(t, uint(2), result.RaffleID)
		assert.Equal(t, 7, result.Position)
		assert.Empty(t, store.wonPositions(1))
	})

	t.Run("no active raffle", func(t *testing.T) {
		store := newMemoryStore()
		store.addRaffle(1, false, 1)

		_, err := newDrawService(store, nil).DrawActive(context.Background())
		require.ErrorIs(t, err, ErrNoActiveRaffle)
	})
}

func TestDrawService_Draw_ConcurrentDrawsRespectCap(t *testing.T) {
	store := newMemoryStore()
	store.addRaffle(1, true, 10, 5, 1)
	store.addParticipants(1, 100)

	svc := newDrawService(store, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success []int
		capped  int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := svc.Draw(context.Background(), 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success = append(success, result.Position)
			case errors.Is(err, ErrAllPrizesAwarded):
				capped++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{10, 5, 1}, success)
	assert.Equal(t, 17, capped)
	assert.Len(t, store.wonPositions(1), 3)
}

// Each of n participants must be selected with probability 1/n. The critical
// value is the chi-square 0.9999 quantile for 9 degrees of freedom.
func TestDrawService_Draw_IsUniform(t *testing.T) {
	const (
		participants = 10
		rounds       = 10000
		critical     = 33.72
	)

	store := newMemoryStore()
	store.addRaffle(1, true, 1)
	store.addParticipants(1, participants)

	draw := newDrawService(store, nil)
	reset := NewResetService(store)
	raffleID := uint(1)

	hits := make(map[uint]int)
	for i := 0; i < rounds; i++ {
		result, err := draw.Draw(context.Background(), raffleID)
		require.NoError(t, err)
		hits[result.Winner.ID]++

		_, err = reset.Reset(context.Background(), &raffleID)
		require.NoError(t, err)
	}

	expected := float64(rounds) / participants
	var chi2 float64
	for id := uint(1); id <= participants; id++ {
		diff := float64(hits[id]) - expected
		chi2 += diff * diff / expected
	}

	assert.Less(t, chi2, critical, "hits: %v", hits)
}

func TestCryptoSource_Index(t *testing.T) {
	src := cryptoSource{}

	for i := 0; i < 1000; i++ {
		v, err := src.Index(7)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, int64(0))
		assert.Less(t, v, int64(7))
	}

	v, err := src.Index(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
	assert.Equal(t, "crypto/rand", src.ID())
}
