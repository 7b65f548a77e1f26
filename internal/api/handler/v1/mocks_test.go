package v1

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

type mockDrawService struct {
	mock.Mock
}

func (m *mockDrawService) Draw(ctx context.Context, raffleID uint) (domain.DrawResult, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).(domain.DrawResult), args.Error(1)
}

func (m *mockDrawService) DrawActive(ctx context.Context) (domain.DrawResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DrawResult), args.Error(1)
}

type mockResetService struct {
	mock.Mock
}

func (m *mockResetService) Reset(ctx context.Context, raffleID *uint) (domain.ResetResult, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).(domain.ResetResult), args.Error(1)
}

type mockRaffleService struct {
	mock.Mock
}

func (m *mockRaffleService) ActiveRaffle(ctx context.Context) (domain.Raffle, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockRaffleService) Activate(ctx context.Context, id uint, active bool) (domain.Raffle, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

type mockImporter struct {
	mock.Mock
	content string
}

func (m *mockImporter) Import(ctx context.Context, file io.ReadCloser, raffleID uint) domain.ImportResult {
	defer file.Close()

	b, _ := io.ReadAll(file)
	m.content = string(b)

	args := m.Called(ctx, raffleID)
	return args.Get(0).(domain.ImportResult)
}
