package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"idioviet/internal/speech"
	"idioviet/internal/speech/googletranslate"
	"idioviet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ttsURL(text string) string {
	return "/api/tts?text=" + url.QueryEscape(text)
}

func TestTTS_MissingText(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "no param", target: "/api/tts"},
		{name: "empty", target: "/api/tts?text="},
		{name: "whitespace", target: ttsURL(" \t\n ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestAPI(t)

			w := ta.do(http.MethodGet, tt.target, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.JSONEq(t, `{"error":"Missing 'text' query param"}`, w.Body.String())
			ta.tts.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
		})
	}
}

func TestTTS_Success(t *testing.T) {
	ta := newTestAPI(t)
	ta.tts.On("Synthesize", mock.Anything, "Càng đông, càng vui").
		Return(&speech.Audio{Data: []byte("ID3audio"), ContentType: "audio/mpeg"}, nil)

	w := ta.do(http.MethodGet, ttsURL("  Càng đông, càng vui  "), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ID3audio", w.Body.String())
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="tts.mp3"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0, s-maxage=0", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
	assert.Equal(t, "no-store", w.Header().Get("CDN-Cache-Control"))
	ta.tts.AssertExpectations(t)
}

func TestTTS_TruncatesLongText(t *testing.T) {
	ta := newTestAPI(t)
	long := strings.Repeat("ơ", 250)
	ta.tts.On("Synthesize", mock.Anything, mock.MatchedBy(func(text string) bool {
		return utf8.RuneCountInString(text) == speech.MaxTextLength && strings.HasPrefix(long, text)
	})).Return(&speech.Audio{Data: []byte("x")}, nil)

	w := ta.do(http.MethodGet, ttsURL(long), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	ta.tts.AssertExpectations(t)
}

func TestTTS_Errors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "upstream rate limited",
			err:          &speech.UpstreamError{StatusCode: http.StatusTooManyRequests},
			expectedCode: http.StatusTooManyRequests,
			expectedBody: `{"error":"Upstream TTS request failed"}`,
		},
		{
			name:         "upstream server error",
			err:          &speech.UpstreamError{StatusCode: http.StatusBadGateway},
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"error":"Upstream TTS request failed"}`,
		},
		{
			name:         "upstream not modified",
			err:          &speech.UpstreamError{StatusCode: http.StatusNotModified},
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"error":"Upstream TTS request failed"}`,
		},
		{
			name:         "upstream redirect",
			err:          &speech.UpstreamError{StatusCode: http.StatusFound},
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"error":"Upstream TTS request failed"}`,
		},
		{
			name:         "circuit open",
			err:          speech.ErrCircuitOpen,
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"error":"Upstream TTS request failed"}`,
		},
		{
			name:         "network failure",
			err:          errors.New("dial tcp: connection refused"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Unexpected server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestAPI(t)
			ta.tts.On("Synthesize", mock.Anything, "xin chào").Return(nil, tt.err)

			w := ta.do(http.MethodGet, ttsURL("xin chào"), nil)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestTTS_ThroughCacheAndBreaker(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("q") == "lỗi" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("mp3:" + r.URL.Query().Get("q")))
	}))
	defer upstream.Close()

	client := googletranslate.New(googletranslate.WithBaseURL(upstream.URL), googletranslate.WithHTTPClient(upstream.Client()))
	breaker := speech.NewBreaker(client, speech.BreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour}, testutil.NewTestLogger())
	provider := speech.NewCache(breaker, 16, time.Hour, nil)
	ta := newTestAPIWithTTS(t, provider)

	for i := 0; i < 2; i++ {
		w := ta.do(http.MethodGet, ttsURL("xin chào"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "mp3:xin chào", w.Body.String())
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second request served from cache")

	w := ta.do(http.MethodGet, ttsURL("lỗi"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Upstream TTS request failed"}`, w.Body.String())

	w = ta.do(http.MethodGet, ttsURL("tạm biệt"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "open circuit fails fast")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	w = ta.do(http.MethodGet, ttsURL("xin chào"), nil)
	assert.Equal(t, http.StatusOK, w.Code, "cached clips survive an open circuit")

}

func TestTTS_UpstreamNotModifiedKeepsErrorBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer upstream.Close()

	client := googletranslate.New(googletranslate.WithBaseURL(upstream.URL), googletranslate.WithHTTPClient(upstream.Client()))
	ta := newTestAPIWithTTS(t, client)

	w := ta.do(http.MethodGet, ttsURL("xin chào"), nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Upstream TTS request failed"}`, w.Body.String())
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		upstream int
		expected int
	}{
		{upstream: http.StatusNotModified, expected: http.StatusBadGateway},
		{upstream: http.StatusMovedPermanently, expected: http.StatusBadGateway},
		{upstream: http.StatusOK, expected: http.StatusBadGateway},
		{upstream: http.StatusBadRequest, expected: http.StatusBadRequest},
		{upstream: http.StatusNotFound, expected: http.StatusNotFound},
		{upstream: http.StatusServiceUnavailable, expected: http.StatusServiceUnavailable},
		{upstream: 599, expected: 599},
		{upstream: 600, expected: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.upstream), func(t *testing.T) {
			assert.Equal(t, tt.expected, errorStatus(tt.upstream))
		})
	}
}
