package service

import (
	"time"

	"idioviet/internal/recorder"
	"idioviet/internal/repository"

	"go.uber.org/zap"
)

// CleanupService removes stale practice data
type CleanupService struct {
	recordingRepo repository.RecordingRepository
	recorder      *recorder.Recorder
	retentionDays int
	sessionMaxAge time.Duration
	logger        *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(
	recordingRepo repository.RecordingRepository,
	rec *recorder.Recorder,
	retentionDays int,
	sessionMaxAge time.Duration,
	logger *zap.Logger,
) *CleanupService {
	return &CleanupService{
		recordingRepo: recordingRepo,
		recorder:      rec,
		retentionDays: retentionDays,
		sessionMaxAge: sessionMaxAge,
		logger:        logger,
	}
}

// ExpireSessions drops recording sessions the learner never stopped
func (s *CleanupService) ExpireSessions() int {
	dropped := s.recorder.Expire(s.sessionMaxAge)
	if dropped > 0 {
		s.logger.Info("Expired abandoned recording sessions", zap.Int("count", dropped))
	}
	return dropped
}

// CleanupOldData removes recordings older than the retention period
func (s *CleanupService) CleanupOldData() error {
	s.logger.Info("Starting cleanup of old recordings", zap.Int("retention_days", s.retentionDays))

	err := s.recordingRepo.CleanOldRecordings(s.retentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup old recordings", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully")
	return nil
}
