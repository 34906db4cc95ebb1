package postgres

import (
	"database/sql"
)

// LearnerRepo implements repository.LearnerRepository
type LearnerRepo struct {
	db *sql.DB
}

// NewLearnerRepo creates a new learner repository
func NewLearnerRepo(db *sql.DB) *LearnerRepo {
	return &LearnerRepo{db: db}
}

// EnsureLearnerExists creates learner if not exists
func (r *LearnerRepo) EnsureLearnerExists(owner string) error {
	query := `
		INSERT INTO learners (owner)
		VALUES ($1)
		ON CONFLICT (owner) DO NOTHING
	`
	_, err := r.db.Exec(query, owner)
	return err
}

// Ping checks the database connection
func (r *LearnerRepo) Ping() error {
	return r.db.Ping()
}
