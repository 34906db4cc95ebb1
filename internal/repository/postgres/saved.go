package postgres

import (
	"database/sql"
	"fmt"
)

// SavedIdiomRepo implements repository.SavedIdiomRepository
type SavedIdiomRepo struct {
	db *sql.DB
}

// NewSavedIdiomRepo creates a new saved idiom repository
func NewSavedIdiomRepo(db *sql.DB) *SavedIdiomRepo {
	return &SavedIdiomRepo{db: db}
}

// ListSaved returns saved idiom ids in the order they were saved
func (r *SavedIdiomRepo) ListSaved(owner string) ([]int, error) {
	query := `
		SELECT idiom_id
		FROM saved_idioms
		WHERE owner = $1
		ORDER BY created_at, idiom_id
	`
	rows, err := r.db.Query(query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// IsSaved checks if an idiom is saved by the learner
func (r *SavedIdiomRepo) IsSaved(owner string, idiomID int) (bool, error) {
	var saved bool
	query := `SELECT EXISTS (SELECT 1 FROM saved_idioms WHERE owner = $1 AND idiom_id = $2)`
	err := r.db.QueryRow(query, owner, idiomID).Scan(&saved)
	return saved, err
}

// ToggleSaved removes the idiom if it is saved and saves it otherwise.
// Returns true if the idiom is saved after the call.
func (r *SavedIdiomRepo) ToggleSaved(owner string, idiomID int) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if err := lockLearner(tx, owner); err != nil {
		return false, err
	}

	res, err := tx.Exec(
		`DELETE FROM saved_idioms WHERE owner = $1 AND idiom_id = $2`,
		owner, idiomID,
	)
	if err != nil {
		return false, err
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	saved := removed == 0
	if saved {
		query := `
			INSERT INTO saved_idioms (owner, idiom_id)
			VALUES ($1, $2)
			ON CONFLICT (owner, idiom_id) DO NOTHING
		`
		if _, err := tx.Exec(query, owner, idiomID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return saved, nil
}

// ReplaceSaved overwrites the learner's saved set
func (r *SavedIdiomRepo) ReplaceSaved(owner string, idiomIDs []int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockLearner(tx, owner); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM saved_idioms WHERE owner = $1`, owner); err != nil {
		return err
	}

	for _, id := range idiomIDs {
		query := `
			INSERT INTO saved_idioms (owner, idiom_id)
			VALUES ($1, $2)
			ON CONFLICT (owner, idiom_id) DO NOTHING
		`
		if _, err := tx.Exec(query, owner, id); err != nil {
			return fmt.Errorf("failed to save idiom %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// lockLearner serializes saved set writes of one learner until tx ends
func lockLearner(tx *sql.Tx, owner string) error {
	if _, err := tx.Exec(`SELECT 1 FROM learners WHERE owner = $1 FOR UPDATE`, owner); err != nil {
		return fmt.Errorf("failed to lock learner: %w", err)
	}
	return nil
}
