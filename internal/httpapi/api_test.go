package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"idioviet/internal/metrics"
	"idioviet/internal/middleware"
	"idioviet/internal/recorder"
	"idioviet/internal/service"
	"idioviet/internal/speech"
	"idioviet/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router     *gin.Engine
	learners   *testutil.MockLearnerRepository
	saved      *testutil.MockSavedIdiomRepository
	recordings *testutil.MockRecordingRepository
	tts        *testutil.MockSpeechProvider
	encourager *testutil.MockEncourager
}

func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithTTS(t, nil)
}

// newTestAPIWithTTS uses provider for /api/tts, or a mock when provider is nil
func newTestAPIWithTTS(t *testing.T, provider speech.Provider) *testAPI {
	t.Helper()

	ta := &testAPI{
		learners:   new(testutil.MockLearnerRepository),
		saved:      new(testutil.MockSavedIdiomRepository),
		recordings: new(testutil.MockRecordingRepository),
		tts:        new(testutil.MockSpeechProvider),
		encourager: new(testutil.MockEncourager),
	}
	ta.learners.On("EnsureLearnerExists", mock.Anything).Return(nil)
	if provider == nil {
		provider = ta.tts
	}

	logger := testutil.NewTestLogger()
	cat := testutil.NewTestCatalog(t)

	ta.router = NewRouter(Deps{
		Catalog:    cat,
		TTS:        provider,
		Saved:      service.NewSavedService(ta.saved, cat),
		Recordings: service.NewRecordingService(ta.recordings, recorder.New(64, nil), cat, ta.encourager, nil, logger),
		Learners:   service.NewLearnerService(ta.learners),
		Sessions:   middleware.NewSessionStore(testSecret, false),
		Metrics:    metrics.NewMetrics(),
		Logger:     logger,

		MaxRecordingBytes: 64,
	})
	return ta
}

// do serves one request and returns the recorder
func (ta *testAPI) do(method, target string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

// session opens a learner session and returns its cookie
func (ta *testAPI) session(t *testing.T) *http.Cookie {
	t.Helper()
	ta.saved.On("ListSaved", mock.Anything).Return([]int{}, nil).Once()
	w := ta.do(http.MethodGet, "/api/saved", nil)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}
