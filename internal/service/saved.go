package service

import (
	"errors"
	"fmt"

	"idioviet/internal/catalog"
	"idioviet/internal/domain"
	"idioviet/internal/repository"
)

// ErrUnknownIdiom is returned for ids outside the catalog
var ErrUnknownIdiom = errors.New("unknown idiom")

// SavedService handles the learner's saved idioms
type SavedService struct {
	savedRepo repository.SavedIdiomRepository
	catalog   *catalog.Catalog
}

// NewSavedService creates a new saved idiom service
func NewSavedService(savedRepo repository.SavedIdiomRepository, catalog *catalog.Catalog) *SavedService {
	return &SavedService{
		savedRepo: savedRepo,
		catalog:   catalog,
	}
}

// Toggle saves or unsaves an idiom. Returns true if it is saved afterwards.
func (s *SavedService) Toggle(owner string, idiomID int) (bool, error) {
	if !s.catalog.Has(idiomID) {
		return false, ErrUnknownIdiom
	}
	return s.savedRepo.ToggleSaved(owner, idiomID)
}

// IsSaved reports whether the learner saved the idiom
func (s *SavedService) IsSaved(owner string, idiomID int) (bool, error) {
	return s.savedRepo.IsSaved(owner, idiomID)
}

// List returns the learner's saved set
func (s *SavedService) List(owner string) (domain.SavedSet, error) {
	ids, err := s.savedRepo.ListSaved(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved idioms: %w", err)
	}
	return domain.NewSavedSet(ids...), nil
}

// Idioms returns the learner's saved idioms in catalog order
func (s *SavedService) Idioms(owner string) ([]domain.Idiom, error) {
	set, err := s.List(owner)
	if err != nil {
		return nil, err
	}
	return s.catalog.Filter(set), nil
}

// Replace overwrites the saved set, dropping ids that are not in the catalog.
// Returns the stored set.
func (s *SavedService) Replace(owner string, set domain.SavedSet) (domain.SavedSet, error) {
	known := make(domain.SavedSet, len(set))
	for id := range set {
		if s.catalog.Has(id) {
			known[id] = struct{}{}
		}
	}

	if err := s.savedRepo.ReplaceSaved(owner, known.IDs()); err != nil {
		return nil, fmt.Errorf("failed to replace saved idioms: %w", err)
	}
	return known, nil
}
