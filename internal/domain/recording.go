package domain

import "time"

// Recording is a learner's stored pronunciation attempt for an idiom
type Recording struct {
	ID          string    `json:"id"`
	Owner       string    `json:"-"`
	IdiomID     int       `json:"idiom_id"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	Audio       []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
