// Package recorder assembles pronunciation attempts uploaded in chunks.
package recorder

import (
	"bytes"
	"errors"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxBytes caps a single attempt
const DefaultMaxBytes = 10 << 20

var (
	ErrSessionNotFound = errors.New("recording session not found")
	ErrTooLarge        = errors.New("recording exceeds size limit")
)

// Metrics receives the number of open sessions
type Metrics interface {
	SetActiveRecordings(n int)
}

// Session describes an open recording
type Session struct {
	ID        string
	Owner     string
	IdiomID   int
	MimeType  string
	StartedAt time.Time
	Size      int
}

// Clip is a finished recording
type Clip struct {
	SessionID   string
	Owner       string
	IdiomID     int
	ContentType string
	Data        []byte
	StartedAt   time.Time
}

type session struct {
	Session
	chunks [][]byte
}

// Recorder holds at most one open session per owner
type Recorder struct {
	maxBytes int
	metrics  Metrics
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a Recorder. A non-positive maxBytes uses DefaultMaxBytes.
func New(maxBytes int, metrics Metrics) *Recorder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Recorder{
		maxBytes: maxBytes,
		metrics:  metrics,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Start opens a session for owner. If owner was already recording, that
// session is stopped first and its clip returned (nil when it had no audio).
func (r *Recorder) Start(owner string, idiomID int, mimeType string) (Session, *Clip) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *Clip
	if s, ok := r.sessions[owner]; ok {
		previous = s.clip()
		delete(r.sessions, owner)
	}

	s := &session{Session: Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		IdiomID:   idiomID,
		MimeType:  mimeType,
		StartedAt: r.now(),
	}}
	r.sessions[owner] = s
	r.report()

	return s.Session, previous
}

// Append adds a chunk to the owner's open session. Empty chunks are ignored.
func (r *Recorder) Append(owner, sessionID string, chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[owner]
	if !ok || s.ID != sessionID {
		return ErrSessionNotFound
	}
	if len(chunk) == 0 {
		return nil
	}
	if s.Size+len(chunk) > r.maxBytes {
		return ErrTooLarge
	}

	data := make([]byte, len(chunk))
	copy(data, chunk)
	s.chunks = append(s.chunks, data)
	s.Size += len(data)
	return nil
}

// Stop closes the owner's session and returns the assembled clip,
// or nil when no audio was captured
func (r *Recorder) Stop(owner, sessionID string) (*Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[owner]
	if !ok || s.ID != sessionID {
		return nil, ErrSessionNotFound
	}
	delete(r.sessions, owner)
	r.report()

	return s.clip(), nil
}

// Active returns the owner's open session
func (r *Recorder) Active(owner string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[owner]
	if !ok {
		return Session{}, false
	}
	return s.Session, true
}

// Expire drops sessions started more than maxAge ago and returns how many were dropped
func (r *Recorder) Expire(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	dropped := 0
	for owner, s := range r.sessions {
		if s.StartedAt.Before(cutoff) {
			delete(r.sessions, owner)
			dropped++
		}
	}
	if dropped > 0 {
		r.report()
	}
	return dropped
}

// Must be called with r.mu held.
func (r *Recorder) report() {
	if r.metrics != nil {
		r.metrics.SetActiveRecordings(len(r.sessions))
	}
}

func (s *session) clip() *Clip {
	if s.Size == 0 {
		return nil
	}
	data := bytes.Join(s.chunks, nil)
	return &Clip{
		SessionID:   s.ID,
		Owner:       s.Owner,
		IdiomID:     s.IdiomID,
		ContentType: DetectContentType(data, s.MimeType),
		Data:        data,
		StartedAt:   s.StartedAt,
	}
}

// DetectContentType sniffs the container of an audio clip. Sniffing wins over
// the declared type; unknown audio falls back to the declared audio type,
// then to audio/webm.
func DetectContentType(data []byte, declared string) string {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is("video/mp4"), m.Is("audio/mp4"), m.Is("audio/x-m4a"):
			return "audio/mp4"
		case m.Is("video/webm"), m.Is("audio/webm"):
			return "audio/webm"
		case m.Is("audio/ogg"), m.Is("application/ogg"):
			return "audio/ogg"
		case m.Is("audio/mpeg"):
			return "audio/mpeg"
		case m.Is("audio/wav"):
			return "audio/wav"
		}
	}

	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mediaType, "audio/") {
		return mediaType
	}
	return "audio/webm"
}
