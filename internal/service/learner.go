package service

import (
	"fmt"

	"idioviet/internal/domain"
	"idioviet/internal/repository"
)

// LearnerService handles learner identity
type LearnerService struct {
	learnerRepo repository.LearnerRepository
}

// NewLearnerService creates a new learner service
func NewLearnerService(learnerRepo repository.LearnerRepository) *LearnerService {
	return &LearnerService{learnerRepo: learnerRepo}
}

// EnsureWebLearner creates the learner record for a browser session
func (s *LearnerService) EnsureWebLearner(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id cannot be empty")
	}
	owner := domain.WebOwner(sessionID)
	return owner, s.learnerRepo.EnsureLearnerExists(owner)
}

// EnsureTelegramLearner creates the learner record for a Telegram user
func (s *LearnerService) EnsureTelegramLearner(userID int64) (string, error) {
	owner := domain.TelegramOwner(userID)
	return owner, s.learnerRepo.EnsureLearnerExists(owner)
}

// Ready reports whether learner storage is reachable
func (s *LearnerService) Ready() error {
	return s.learnerRepo.Ping()
}
