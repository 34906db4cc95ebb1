package postgres

import (
	"database/sql"
	"time"

	"idioviet/internal/domain"
)

// DefaultHistoryDays is the practice history window when none is configured
const DefaultHistoryDays = 60

// RecordingRepo implements repository.RecordingRepository
type RecordingRepo struct {
	db          *sql.DB
	historyDays int
}

// NewRecordingRepo creates a new recording repository. Practice days are
// listed over the last historyDays days, which should match retention.
func NewRecordingRepo(db *sql.DB, historyDays int) *RecordingRepo {
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	return &RecordingRepo{db: db, historyDays: historyDays}
}

// SaveRecording stores a finished pronunciation attempt
func (r *RecordingRepo) SaveRecording(rec *domain.Recording) error {
	query := `
		INSERT INTO recordings (id, owner, idiom_id, content_type, size_bytes, audio)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return r.db.QueryRow(query, rec.ID, rec.Owner, rec.IdiomID, rec.ContentType, rec.Size, rec.Audio).
		Scan(&rec.CreatedAt)
}

// GetRecording returns a recording with its audio, or nil if it does not exist
func (r *RecordingRepo) GetRecording(id string) (*domain.Recording, error) {
	query := `
		SELECT id, owner, idiom_id, content_type, size_bytes, audio, created_at
		FROM recordings
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetLatestRecording returns metadata of the learner's newest attempt for an
// idiom, or nil. Audio is not loaded.
func (r *RecordingRepo) GetLatestRecording(owner string, idiomID int) (*domain.Recording, error) {
	query := `
		SELECT id, owner, idiom_id, content_type, size_bytes, created_at
		FROM recordings
		WHERE owner = $1 AND idiom_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var rec domain.Recording
	err := r.db.QueryRow(query, owner, idiomID).
		Scan(&rec.ID, &rec.Owner, &rec.IdiomID, &rec.ContentType, &rec.Size, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecordingRepo) scanOne(row *sql.Row) (*domain.Recording, error) {
	var rec domain.Recording
	err := row.Scan(&rec.ID, &rec.Owner, &rec.IdiomID, &rec.ContentType, &rec.Size, &rec.Audio, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetPracticeDays returns days with attempts and their counts.
// Days are counted in Vietnam time over the history window.
func (r *RecordingRepo) GetPracticeDays(owner string, limit, offset int) ([]domain.Day, error) {
	query := `
		SELECT DATE(created_at AT TIME ZONE 'Asia/Ho_Chi_Minh') AS day, COUNT(*) AS count
		FROM recordings
		WHERE owner = $1
			AND created_at >= NOW() - INTERVAL '1 day' * $2
		GROUP BY DATE(created_at AT TIME ZONE 'Asia/Ho_Chi_Minh')
		ORDER BY day DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(query, owner, r.historyDays, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []domain.Day
	for rows.Next() {
		var d domain.Day
		if err := rows.Scan(&d.Date, &d.AttemptCount); err != nil {
			return nil, err
		}
		days = append(days, d)
	}

	return days, rows.Err()
}

// GetTotalPracticeDays returns the number of days with attempts
func (r *RecordingRepo) GetTotalPracticeDays(owner string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT DATE(created_at AT TIME ZONE 'Asia/Ho_Chi_Minh'))
		FROM recordings
		WHERE owner = $1
			AND created_at >= NOW() - INTERVAL '1 day' * $2
	`

	var count int
	err := r.db.QueryRow(query, owner, r.historyDays).Scan(&count)
	return count, err
}

// GetRecordingsByDate returns attempts made on a specific Vietnam calendar day.
// Audio is not loaded.
func (r *RecordingRepo) GetRecordingsByDate(owner string, date time.Time) ([]domain.Recording, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, domain.PracticeTimezone())

	query := `
		SELECT id, owner, idiom_id, content_type, size_bytes, created_at
		FROM recordings
		WHERE owner = $1
			AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, owner, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.Recording
	for rows.Next() {
		var rec domain.Recording
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.IdiomID, &rec.ContentType, &rec.Size, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// CleanOldRecordings deletes recordings older than specified days
func (r *RecordingRepo) CleanOldRecordings(days int) error {
	query := `
		DELETE FROM recordings
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`
	_, err := r.db.Exec(query, days)
	return err
}
