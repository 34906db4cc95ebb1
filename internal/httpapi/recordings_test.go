package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"idioviet/internal/domain"
	"idioviet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func startSession(t *testing.T, ta *testAPI, cookie *http.Cookie, body string) string {
	t.Helper()
	w := ta.do(http.MethodPost, "/api/recordings", strings.NewReader(body), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got struct {
		ID      string `json:"id"`
		IdiomID int    `json:"idiom_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	return got.ID
}

func TestRecordingFlow(t *testing.T) {
	ta := newTestAPI(t)
	cookie := ta.session(t)

	var saved *domain.Recording
	ta.recordings.On("SaveRecording", mock.AnythingOfType("*domain.Recording")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*domain.Recording) }).
		Return(nil)
	ta.encourager.On("Encourage", mock.Anything, mock.Anything).Return("Tuyệt vời!")

	id := startSession(t, ta, cookie, `{"idiom_id": 2, "mime_type": "audio/webm;codecs=opus"}`)

	w := ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader([]byte("part-1")), cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader([]byte("part-2")), cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ta.do(http.MethodPost, "/api/recordings/"+id+"/stop", nil, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	var attempt struct {
		Recording struct {
			ID          string `json:"id"`
			IdiomID     int    `json:"idiom_id"`
			ContentType string `json:"content_type"`
			Size        int    `json:"size"`
		} `json:"recording"`
		Encouragement string `json:"encouragement"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempt))
	assert.Equal(t, id, attempt.Recording.ID)
	assert.Equal(t, 2, attempt.Recording.IdiomID)
	assert.Equal(t, "audio/webm", attempt.Recording.ContentType)
	assert.Equal(t, 12, attempt.Recording.Size)
	assert.Equal(t, "Tuyệt vời!", attempt.Encouragement)

	require.NotNil(t, saved)
	assert.Equal(t, []byte("part-1part-2"), saved.Audio)

	w = ta.do(http.MethodPost, "/api/recordings/"+id+"/stop", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code, "stopped session is gone")
}

func TestRecording_StopWithoutAudio(t *testing.T) {
	ta := newTestAPI(t)
	cookie := ta.session(t)

	id := startSession(t, ta, cookie, `{"idiom_id": 1}`)
	w := ta.do(http.MethodPost, "/api/recordings/"+id+"/stop", nil, cookie)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	ta.recordings.AssertNotCalled(t, "SaveRecording", mock.Anything)
}

func TestRecording_StartErrors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "unknown idiom",
			body:         `{"idiom_id": 99}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Idiom not found"}`,
		},
		{
			name:         "missing idiom",
			body:         `{"mime_type": "audio/mp4"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Body must contain idiom_id"}`,
		},
		{
			name:         "malformed",
			body:         `{`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Body must contain idiom_id"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestAPI(t)

			w := ta.do(http.MethodPost, "/api/recordings", strings.NewReader(tt.body))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestRecording_ChunkErrors(t *testing.T) {
	ta := newTestAPI(t)
	cookie := ta.session(t)
	id := startSession(t, ta, cookie, `{"idiom_id": 1}`)

	w := ta.do(http.MethodPost, "/api/recordings/unknown/chunks", bytes.NewReader([]byte("a")), cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Recording session not found"}`, w.Body.String())

	w = ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader(make([]byte, 65)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, "single chunk over the limit")

	w = ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader(make([]byte, 40)), cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader(make([]byte, 40)), cookie)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, "total over the limit")
}

func TestRecording_OtherLearnerCannotUseSession(t *testing.T) {
	ta := newTestAPI(t)
	owner := ta.session(t)
	id := startSession(t, ta, owner, `{"idiom_id": 1}`)

	w := ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader([]byte("a")))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordingAudio(t *testing.T) {
	const id = "5b1f0c0e-7a43-4b7e-9d7b-1d2b5b7f8d10"

	ta := newTestAPI(t)
	cookie := ta.session(t)
	ta.recordings.On("GetRecording", id).Return(testutil.NewTestRecording(id, "web:someone-else", 1, []byte("x")), nil)

	w := ta.do(http.MethodGet, "/api/recordings/"+id+"/audio", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Recording not found"}`, w.Body.String())

	w = ta.do(http.MethodGet, "/api/recordings/not-a-uuid/audio", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordingAudio_Owner(t *testing.T) {
	ta := newTestAPI(t)
	cookie := ta.session(t)

	var stored *domain.Recording
	ta.recordings.On("SaveRecording", mock.AnythingOfType("*domain.Recording")).
		Run(func(args mock.Arguments) { stored = args.Get(0).(*domain.Recording) }).
		Return(nil)
	ta.encourager.On("Encourage", mock.Anything, mock.Anything).Return("ok")

	id := startSession(t, ta, cookie, `{"idiom_id": 3, "mime_type": "audio/mp4"}`)
	ta.do(http.MethodPost, "/api/recordings/"+id+"/chunks", bytes.NewReader([]byte("clip")), cookie)
	ta.do(http.MethodPost, "/api/recordings/"+id+"/stop", nil, cookie)
	require.NotNil(t, stored)

	ta.recordings.On("GetRecording", id).Return(stored, nil)

	w := ta.do(http.MethodGet, "/api/recordings/"+id+"/audio", nil, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clip", w.Body.String())
	assert.Equal(t, "audio/mp4", w.Header().Get("Content-Type"))
}
