package testutil

import (
	"context"
	"time"

	"idioviet/internal/domain"
	"idioviet/internal/speech"

	"github.com/stretchr/testify/mock"
)

// MockLearnerRepository is a mock for LearnerRepository
type MockLearnerRepository struct {
	mock.Mock
}

func (m *MockLearnerRepository) EnsureLearnerExists(owner string) error {
	args := m.Called(owner)
	return args.Error(0)
}

func (m *MockLearnerRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// MockSavedIdiomRepository is a mock for SavedIdiomRepository
type MockSavedIdiomRepository struct {
	mock.Mock
}

func (m *MockSavedIdiomRepository) ListSaved(owner string) ([]int, error) {
	args := m.Called(owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockSavedIdiomRepository) IsSaved(owner string, idiomID int) (bool, error) {
	args := m.Called(owner, idiomID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSavedIdiomRepository) ToggleSaved(owner string, idiomID int) (bool, error) {
	args := m.Called(owner, idiomID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSavedIdiomRepository) ReplaceSaved(owner string, idiomIDs []int) error {
	args := m.Called(owner, idiomIDs)
	return args.Error(0)
}

// MockRecordingRepository is a mock for RecordingRepository
type MockRecordingRepository struct {
	mock.Mock
}

func (m *MockRecordingRepository) SaveRecording(rec *domain.Recording) error {
	args := m.Called(rec)
	return args.Error(0)
}

func (m *MockRecordingRepository) GetRecording(id string) (*domain.Recording, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recording), args.Error(1)
}

func (m *MockRecordingRepository) GetLatestRecording(owner string, idiomID int) (*domain.Recording, error) {
	args := m.Called(owner, idiomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recording), args.Error(1)
}

func (m *MockRecordingRepository) GetPracticeDays(owner string, limit, offset int) ([]domain.Day, error) {
	args := m.Called(owner, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Day), args.Error(1)
}

func (m *MockRecordingRepository) GetTotalPracticeDays(owner string) (int, error) {
	args := m.Called(owner)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordingRepository) GetRecordingsByDate(owner string, date time.Time) ([]domain.Recording, error) {
	args := m.Called(owner, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Recording), args.Error(1)
}

func (m *MockRecordingRepository) CleanOldRecordings(days int) error {
	args := m.Called(days)
	return args.Error(0)
}

// MockSpeechProvider is a mock for speech.Provider
type MockSpeechProvider struct {
	mock.Mock
}

func (m *MockSpeechProvider) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*speech.Audio), args.Error(1)
}

// MockEncourager is a mock for service.Encourager
type MockEncourager struct {
	mock.Mock
}

func (m *MockEncourager) Encourage(ctx context.Context, idiom domain.Idiom) string {
	args := m.Called(ctx, idiom)
	return args.String(0)
}
