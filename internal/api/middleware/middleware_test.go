package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/studentpulse/internal/api/middleware"
	"github.com/kiranshivaraju/studentpulse/internal/store"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock Store ---

type mockStore struct {
	keys    []*models.APIKey
	err     error
	touched atomic.Int32
}

func (m *mockStore) Ping(_ context.Context) error { return nil }
func (m *mockStore) GetStudent(_ context.Context, _ string) (*models.StudentInfo, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) LoadStudentData(_ context.Context, _ string) (models.StudentData, error) {
	return models.StudentData{}, store.ErrNotFound
}
func (m *mockStore) ImportStudent(_ context.Context, _ *models.StudentInfo, _ models.StudentData) error {
	return nil
}
func (m *mockStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return m.keys, m.err
}
func (m *mockStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error {
	m.touched.Add(1)
	return nil
}
func (m *mockStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error  { return nil }
func (m *mockStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) { return nil, nil }
func (m *mockStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error       { return nil }
func (m *mockStore) SaveSnapshot(_ context.Context, _ *models.Snapshot) error { return nil }
func (m *mockStore) ListSnapshots(_ context.Context, _ store.SnapshotFilter) ([]*models.Snapshot, int, error) {
	return nil, 0, nil
}

// --- Mock Cache ---

type mockCache struct {
	counter int64
	err     error
	keys    []string
	expiry  time.Duration
}

func (m *mockCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (m *mockCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (m *mockCache) Delete(_ context.Context, _ string) error                          { return nil }
func (m *mockCache) Ping(_ context.Context) error                                      { return nil }
func (m *mockCache) InvalidateStudent(_ context.Context, _ string) (int64, error)      { return 0, nil }
func (m *mockCache) IncrWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	m.keys = append(m.keys, key)
	m.expiry = expiry
	m.counter++
	return m.counter, m.err
}

// --- helpers ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func hashKey(t *testing.T, rawKey string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)
}

// ========================================
// Auth Middleware Tests
// ========================================

func TestAuth_MissingAuthHeader(t *testing.T) {
	auth := mw.NewAuth(&mockStore{})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errBody(t, w)["code"])
}

func TestAuth_InvalidBearerFormat(t *testing.T) {
	auth := mw.NewAuth(&mockStore{})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyTooShort(t *testing.T) {
	auth := mw.NewAuth(&mockStore{})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer short")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyNotFound(t *testing.T) {
	auth := mw.NewAuth(&mockStore{keys: []*models.APIKey{}})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer sp_test1234567890")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongPassword(t *testing.T) {
	rawKey := "sp_test1234567890abcdef"
	ms := &mockStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   hashKey(t, "different_key_entirely"),
		KeyPrefix: rawKey[:8],
		Scopes:    []string{"read"},
	}}}
	auth := mw.NewAuth(ms)
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidKey(t *testing.T) {
	rawKey := "sp_test1234567890abcdef"
	keyID := uuid.New()
	ms := &mockStore{keys: []*models.APIKey{
		{ID: uuid.New(), KeyHash: hashKey(t, "sp_test1_some_other_key"), KeyPrefix: rawKey[:8]},
		{ID: keyID, KeyHash: hashKey(t, rawKey), KeyPrefix: rawKey[:8], Scopes: []string{"read", "admin"}},
	}}
	auth := mw.NewAuth(ms)

	var gotKeyID uuid.UUID
	var gotOK bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeyID, gotOK = mw.KeyID(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.Authenticate(inner)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotOK)
	assert.Equal(t, keyID, gotKeyID)
	assert.Eventually(t, func() bool { return ms.touched.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestAuth_StoreError(t *testing.T) {
	auth := mw.NewAuth(&mockStore{err: errors.New("db down")})
	handler := auth.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer sp_test1234567890")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestAuth_RequireScope_Allowed(t *testing.T) {
	rawKey := "sp_admin_1234567890abcdef"
	ms := &mockStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   hashKey(t, rawKey),
		KeyPrefix: rawKey[:8],
		Scopes:    []string{"read", "admin"},
	}}}
	auth := mw.NewAuth(ms)

	handler := auth.Authenticate(auth.RequireScope("admin")(okHandler()))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RequireScope_Denied(t *testing.T) {
	rawKey := "sp_read__1234567890abcdef"
	ms := &mockStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   hashKey(t, rawKey),
		KeyPrefix: rawKey[:8],
		Scopes:    []string{"read"},
	}}}
	auth := mw.NewAuth(ms)

	handler := auth.Authenticate(auth.RequireScope("admin")(okHandler()))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errBody(t, w)["code"])
}

func TestAuth_RevokedKeyRejected(t *testing.T) {
	rawKey := "sp_gone_1234567890abcdef"
	revoked := time.Now()
	ms := &mockStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		KeyHash:   hashKey(t, rawKey),
		KeyPrefix: rawKey[:8],
		Scopes:    []string{"read"},
		DeletedAt: &revoked,
	}}}
	handler := mw.NewAuth(ms).Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, ms.touched.Load())
}

func TestRequireScope_WithoutKey(t *testing.T) {
	handler := mw.NewAuth(&mockStore{}).RequireScope("read")(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPIKey_FromContext(t *testing.T) {
	key := &models.APIKey{ID: uuid.New(), KeyPrefix: "sp_ctx01", Scopes: []string{"read"}}
	req := httptest.NewRequest("GET", "/test", nil)

	_, ok := mw.APIKey(req)
	assert.False(t, ok)

	req = req.WithContext(mw.WithAPIKey(req.Context(), key))
	got, ok := mw.APIKey(req)
	require.True(t, ok)
	assert.Same(t, key, got)
	id, ok := mw.KeyID(req)
	assert.True(t, ok)
	assert.Equal(t, key.ID, id)
}

// ========================================
// Rate Limit Middleware Tests
// ========================================

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	mc := &mockCache{counter: 0}
	rl := mw.NewRateLimit(mc, 60)

	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req = req.WithContext(mw.WithAPIKey(req.Context(), &models.APIKey{KeyPrefix: "sp_test1"}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	mc := &mockCache{counter: 60} // next IncrWithExpiry will return 61
	at := time.Date(2024, 6, 1, 12, 0, 45, 0, time.UTC)
	rl := mw.NewRateLimit(mc, 60).WithClock(func() time.Time { return at })

	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req = req.WithContext(mw.WithAPIKey(req.Context(), &models.APIKey{KeyPrefix: "sp_over1"}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "16", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errBody(t, w)["code"])
}

func TestRateLimit_FixedWindows(t *testing.T) {
	mc := &mockCache{}
	at := time.Date(2024, 6, 1, 12, 0, 10, 0, time.UTC)
	rl := mw.NewRateLimit(mc, 60).WithClock(func() time.Time { return at })
	handler := rl.Limit(okHandler())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req = req.WithContext(mw.WithAPIKey(req.Context(), &models.APIKey{KeyPrefix: "sp_win01"}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	w := send()
	windowStart := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, strconv.FormatInt(windowStart.Add(time.Minute).Unix(), 10), w.Header().Get("X-RateLimit-Reset"))

	at = at.Add(40 * time.Second) // same window
	send()
	at = at.Add(20 * time.Second) // next window
	send()

	require.Len(t, mc.keys, 3)
	assert.Equal(t, mc.keys[0], mc.keys[1])
	assert.NotEqual(t, mc.keys[1], mc.keys[2])
	assert.Equal(t, "ratelimit:sp_win01:"+strconv.FormatInt(windowStart.Unix(), 10), mc.keys[0])
	assert.Greater(t, mc.expiry, time.Minute)
}

func TestRateLimit_CacheError_FailsOpen(t *testing.T) {
	rl := mw.NewRateLimit(&mockCache{err: errors.New("redis down")}, 60)
	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	req = req.WithContext(mw.WithAPIKey(req.Context(), &models.APIKey{KeyPrefix: "sp_test1"}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_NoKeyPrefix_PassThrough(t *testing.T) {
	mc := &mockCache{}
	rl := mw.NewRateLimit(mc, 60)

	handler := rl.Limit(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Recovery Middleware Tests
// ========================================

func TestRecovery_CatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("something went wrong")
	})

	handler := mw.Recovery(panicking)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestRecovery_PanicAfterResponseStarted(t *testing.T) {
	partial := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":`))
		panic("encoder blew up")
	})

	w := httptest.NewRecorder()
	mw.Recovery(partial).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"data":`, w.Body.String())
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		mw.Recovery(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	})
}

func TestRecovery_NoPanic(t *testing.T) {
	handler := mw.Recovery(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Logging Middleware Tests
// ========================================

func TestLogger_SetsStatus(t *testing.T) {
	handler := mw.Logger(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogger_WritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	handler := middleware.RequestID(mw.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/brew", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/brew", line["path"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.NotEmpty(t, line["request_id"])
}
