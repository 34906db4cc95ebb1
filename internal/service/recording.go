package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idioviet/internal/catalog"
	"idioviet/internal/domain"
	"idioviet/internal/recorder"
	"idioviet/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrEmptyRecording    = errors.New("recording is empty")
)

// Recording sources
const (
	SourceWeb      = "web"
	SourceTelegram = "telegram"
)

// RecordingMetrics receives stored attempt accounting
type RecordingMetrics interface {
	RecordRecordingSaved(source string, size int)
}

// Attempt is a stored pronunciation attempt with its encouragement message
type Attempt struct {
	Recording     *domain.Recording `json:"recording"`
	Encouragement string            `json:"encouragement"`
}

// RecordingService handles pronunciation attempts
type RecordingService struct {
	recordingRepo repository.RecordingRepository
	recorder      *recorder.Recorder
	catalog       *catalog.Catalog
	encourager    Encourager
	metrics       RecordingMetrics
	logger        *zap.Logger
}

// NewRecordingService creates a new recording service
func NewRecordingService(
	recordingRepo repository.RecordingRepository,
	rec *recorder.Recorder,
	catalog *catalog.Catalog,
	encourager Encourager,
	metrics RecordingMetrics,
	logger *zap.Logger,
) *RecordingService {
	return &RecordingService{
		recordingRepo: recordingRepo,
		recorder:      rec,
		catalog:       catalog,
		encourager:    encourager,
		metrics:       metrics,
		logger:        logger,
	}
}

// Start opens a recording session for the idiom. A session the learner left
// open is stopped and its audio stored.
func (s *RecordingService) Start(owner string, idiomID int, mimeType string) (recorder.Session, error) {
	if !s.catalog.Has(idiomID) {
		return recorder.Session{}, ErrUnknownIdiom
	}

	session, previous := s.recorder.Start(owner, idiomID, mimeType)
	if previous != nil {
		if _, err := s.store(previous.SessionID, owner, previous.IdiomID, previous.ContentType, previous.Data, SourceWeb); err != nil {
			s.logger.Error("Failed to store interrupted recording",
				zap.String("owner", owner),
				zap.String("session_id", previous.SessionID),
				zap.Error(err),
			)
		}
	}
	return session, nil
}

// Append adds an audio chunk to an open session
func (s *RecordingService) Append(owner, sessionID string, chunk []byte) error {
	return s.recorder.Append(owner, sessionID, chunk)
}

// Stop closes the session and stores the attempt. Returns nil when no audio was captured.
func (s *RecordingService) Stop(ctx context.Context, owner, sessionID string) (*Attempt, error) {
	clip, err := s.recorder.Stop(owner, sessionID)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, nil
	}

	rec, err := s.store(clip.SessionID, owner, clip.IdiomID, clip.ContentType, clip.Data, SourceWeb)
	if err != nil {
		return nil, err
	}
	return s.attempt(ctx, rec), nil
}

// SaveAttempt stores a complete clip, such as a Telegram voice message
func (s *RecordingService) SaveAttempt(ctx context.Context, owner string, idiomID int, data []byte, mimeType, source string) (*Attempt, error) {
	if !s.catalog.Has(idiomID) {
		return nil, ErrUnknownIdiom
	}
	if len(data) == 0 {
		return nil, ErrEmptyRecording
	}

	rec, err := s.store(uuid.NewString(), owner, idiomID, recorder.DetectContentType(data, mimeType), data, source)
	if err != nil {
		return nil, err
	}
	return s.attempt(ctx, rec), nil
}

// Get returns one of the learner's recordings with audio
func (s *RecordingService) Get(owner, id string) (*domain.Recording, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRecordingNotFound
	}

	rec, err := s.recordingRepo.GetRecording(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	if rec == nil || rec.Owner != owner {
		return nil, ErrRecordingNotFound
	}
	return rec, nil
}

// Latest returns the learner's newest attempt for an idiom
func (s *RecordingService) Latest(owner string, idiomID int) (*domain.Recording, error) {
	if !s.catalog.Has(idiomID) {
		return nil, ErrUnknownIdiom
	}

	rec, err := s.recordingRepo.GetLatestRecording(owner, idiomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest recording: %w", err)
	}
	if rec == nil {
		return nil, ErrRecordingNotFound
	}
	return rec, nil
}

// PracticeHistory returns a page of days with attempts and the total page count
func (s *RecordingService) PracticeHistory(owner string, page int) ([]domain.Day, int, error) {
	const pageSize = 7

	if page < 1 {
		page = 1
	}

	offset := (page - 1) * pageSize
	days, err := s.recordingRepo.GetPracticeDays(owner, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	totalDays, err := s.recordingRepo.GetTotalPracticeDays(owner)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (totalDays + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return days, totalPages, nil
}

// AttemptsByDate returns attempts for a YYYYMMDD date
func (s *RecordingService) AttemptsByDate(owner, dateStr string) ([]domain.Recording, error) {
	date, err := time.Parse("20060102", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}

	return s.recordingRepo.GetRecordingsByDate(owner, date)
}

func (s *RecordingService) store(id, owner string, idiomID int, contentType string, data []byte, source string) (*domain.Recording, error) {
	rec := &domain.Recording{
		ID:          id,
		Owner:       owner,
		IdiomID:     idiomID,
		ContentType: contentType,
		Size:        len(data),
		Audio:       data,
	}
	if err := s.recordingRepo.SaveRecording(rec); err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRecordingSaved(source, rec.Size)
	}
	s.logger.Info("Recording saved",
		zap.String("owner", owner),
		zap.String("recording_id", rec.ID),
		zap.Int("idiom_id", idiomID),
		zap.Int("size", rec.Size),
	)
	return rec, nil
}

func (s *RecordingService) attempt(ctx context.Context, rec *domain.Recording) *Attempt {
	idiom, _ := s.catalog.Get(rec.IdiomID)
	return &Attempt{
		Recording:     rec,
		Encouragement: s.encourager.Encourage(ctx, idiom),
	}
}
