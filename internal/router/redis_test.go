package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/database/databasetest"
)

func redisOptions(t *testing.T, capacity int) Options {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return Options{
		Redis: rdb,
		Cache: config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20},
		RateLimit: config.RateLimitConfig{
			Enabled:        true,
			Capacity:       capacity,
			AuthCapacity:   100,
			RefillTokens:   1,
			RefillInterval: time.Hour,
			TTL:            time.Hour,
			KeyStrategy:    "ip_user_route",
			Prefix:         "rl",
		},
	}
}

func newRedisAPI(t *testing.T) (*testAPI, *sql.DB) {
	t.Helper()
	db := databasetest.Open(t)
	return newTestAPIWith(t, db, redisOptions(t, 1000)), db
}

func TestCachedDaysRefreshAfterWrite(t *testing.T) {
	a, _ := newRedisAPI(t)
	token := a.signup("cache@example.com")
	a.createDay(token, "2024-01-01")

	rec := a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Len(t, decode[[]obj](t, rec), 1)

	rec = a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Len(t, decode[[]obj](t, rec), 1)
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))

	a.createDay(token, "2024-01-02")

	rec = a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	days := decode[[]obj](t, rec)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-02", days[0]["date"])
}

func TestCachedTasksEmptyAfterDayDelete(t *testing.T) {
	a, _ := newRedisAPI(t)
	token := a.signup("gone@example.com")
	dayID := a.createDay(token, "2024-01-01", task("a", 1), task("b", 2))["id"].(string)

	path := "/tasks?dayId=" + dayID
	rec := a.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]obj](t, rec), 2)
	assert.Equal(t, "HIT", a.do(http.MethodGet, path, token, nil).Header().Get("X-Cache"))

	rec = a.do(http.MethodDelete, "/days/"+dayID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCacheIsPerUser(t *testing.T) {
	a, _ := newRedisAPI(t)
	ann := a.signup("ann@example.com")
	bob := a.signup("bob@example.com")
	a.createDay(ann, "2024-01-01")

	assert.Len(t, decode[[]obj](t, a.do(http.MethodGet, "/days", ann, nil)), 1)
	rec := a.do(http.MethodGet, "/days", bob, nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCacheHitCarriesLiveRateLimitHeaders(t *testing.T) {
	a, _ := newRedisAPI(t)
	token := a.signup("headers@example.com")

	first := a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, []string{"999"}, first.Header().Values("X-RateLimit-Remaining"))

	hit := a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, []string{"998"}, hit.Header().Values("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"1000"}, hit.Header().Values("X-RateLimit-Limit"))
	assert.Equal(t, []string{"HIT"}, hit.Header().Values("X-Cache"))
}

func TestFailedDayDeleteStillInvalidatesCache(t *testing.T) {
	a, db := newRedisAPI(t)
	token := a.signup("partial@example.com")
	dayID := a.createDay(token, "2024-01-01", task("a", 1))["id"].(string)

	assert.Len(t, decode[[]obj](t, a.do(http.MethodGet, "/days", token, nil)), 1)
	require.Equal(t, "HIT", a.do(http.MethodGet, "/days", token, nil).Header().Get("X-Cache"))

	_, err := db.Exec(`CREATE TRIGGER keep_tasks BEFORE DELETE ON tasks BEGIN SELECT RAISE(ABORT, 'tasks are locked'); END`)
	require.NoError(t, err)

	rec := a.do(http.MethodDelete, "/days/"+dayID, token, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Day deleted but its tasks could not be removed", decode[obj](t, rec)["message"])

	rec = a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRefusedWriteKeepsCache(t *testing.T) {
	a, _ := newRedisAPI(t)
	token := a.signup("refused@example.com")
	a.createDay(token, "2024-01-01")

	a.do(http.MethodGet, "/days", token, nil)
	rec := a.do(http.MethodPost, "/days", token, obj{"date": "2024-01-01"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "HIT", a.do(http.MethodGet, "/days", token, nil).Header().Get("X-Cache"))
}

func TestTokenBucketAnswers429(t *testing.T) {
	a := newTestAPIWith(t, databasetest.Open(t), redisOptions(t, 1))
	token := a.signup("busy@example.com")

	rec := a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = a.do(http.MethodGet, "/days", token, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decode[obj](t, rec)
	assert.Equal(t, "Too many requests, please try again later", body["message"])
	retry, ok := body["retryAfter"].(float64)
	require.True(t, ok, rec.Body.String())
	assert.Greater(t, retry, 0.0)
	assert.Equal(t, fmt.Sprint(int(retry)), rec.Header().Get("Retry-After"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Key"))

	// buckets are per route
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/tasks", token, nil).Code)
}
