package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserDirectory) GetBlacklist(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserDirectory) GetBadwords(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, msg)
	if rf, ok := args.Get(0).(func(context.Context, domain.Message) *domain.Message); ok {
		return rf(ctx, msg), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageStore) UpdateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, msg)
	if rf, ok := args.Get(0).(func(context.Context, domain.Message) *domain.Message); ok {
		return rf(ctx, msg), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageStore) GetMessageByID(ctx context.Context, id int64) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageStore) DeleteMessage(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageStore) GetFolder(ctx context.Context, folder domain.Folder, email string) ([]domain.Message, error) {
	args := m.Called(ctx, folder, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageStore) Search(ctx context.Context, email string, filter domain.SearchFilter) (*domain.SearchResult, error) {
	args := m.Called(ctx, email, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResult), args.Error(1)
}

func (m *MockMessageStore) GetNotifications(ctx context.Context, email string) (*domain.Notifications, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notifications), args.Error(1)
}

// echoCreate makes CreateMessage return its argument with a fresh id.
func echoCreate(store *MockMessageStore, firstID int64) {
	next := firstID
	store.On("CreateMessage", mock.Anything, mock.Anything).Return(func(_ context.Context, msg domain.Message) *domain.Message {
		msg.ID = next
		next++
		return &msg
	}, nil)
}

func echoUpdate(_ context.Context, msg domain.Message) *domain.Message {
	return &msg
}
