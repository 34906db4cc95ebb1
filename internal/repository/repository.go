package repository

import (
	"time"

	"idioviet/internal/domain"
)

// LearnerRepository defines learner data operations
type LearnerRepository interface {
	EnsureLearnerExists(owner string) error
	Ping() error
}

// SavedIdiomRepository defines saved set operations
type SavedIdiomRepository interface {
	ListSaved(owner string) ([]int, error)
	IsSaved(owner string, idiomID int) (bool, error)
	ToggleSaved(owner string, idiomID int) (bool, error)
	ReplaceSaved(owner string, idiomIDs []int) error
}

// RecordingRepository defines pronunciation attempt operations
type RecordingRepository interface {
	SaveRecording(rec *domain.Recording) error
	GetRecording(id string) (*domain.Recording, error)
	GetLatestRecording(owner string, idiomID int) (*domain.Recording, error)
	GetPracticeDays(owner string, limit, offset int) ([]domain.Day, error)
	GetTotalPracticeDays(owner string) (int, error)
	GetRecordingsByDate(owner string, date time.Time) ([]domain.Recording, error)
	CleanOldRecordings(days int) error
}
