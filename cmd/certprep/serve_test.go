package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalServer(t *testing.T) http.Handler {
	t.Helper()
	c := &config.Config{
		StorageBackend:  config.BackendSQLite,
		SQLitePath:      ":memory:",
		LocalUserID:     1,
		LocalQuotaBytes: 1 << 20,
		AchievementTZ:   time.UTC,
	}
	st, err := openStorage(c)
	require.NoError(t, err)
	t.Cleanup(st.close)
	return newRouter(c, st)
}

func TestHealth(t *testing.T) {
	h := newLocalServer(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestLocalModeSaveUnlocksAchievements(t *testing.T) {
	h := newLocalServer(t)

	body := `{
		"title": "Algebra Quiz",
		"questions": [
			{"id":"q1","kind":"single","text":"1+1?","options":["1","2"],"correct":"2"},
			{"id":"q2","kind":"single","text":"2+2?","options":["4","5"],"correct":"4"},
			{"id":"q3","kind":"single","text":"3+3?","options":["6","7"],"correct":"6"}
		],
		"progress": {
			"user_answers": ["2","4","6"],
			"question_score": [1,1,1],
			"question_submitted": [true,true,true],
			"total_questions": 3,
			"completed_questions": 3,
			"elapsed_seconds": 300
		}
	}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/saved-tests", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp models.SaveTestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.AchievementsUnlocked, "first_test")
	assert.Contains(t, resp.AchievementsUnlocked, "perfect_score")
	assert.Equal(t, 100, resp.PercentComplete)
	assert.False(t, resp.SavedTest.Synced)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/achievements", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var status models.AchievementsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.GreaterOrEqual(t, status.EarnedCount, 2)
}

func TestLocalModeHasNoAuthRoutes(t *testing.T) {
	h := newLocalServer(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{}`)))
	assert.NotEqual(t, http.StatusOK, rr.Code)
}
