package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstreamCall struct {
	Method string
	Path   string
	Query  string
	UserID string
	Body   string
}

// newUpstream records every request the gateway lets through.
func newUpstream(t *testing.T) (*httptest.Server, *[]upstreamCall) {
	t.Helper()
	calls := &[]upstreamCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*calls = append(*calls, upstreamCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			UserID: r.Header.Get(headerUserID),
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"forwarded":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

func newGateway(t *testing.T, upstreamURL string, limiter ratelimit.Limiter) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)
	if limiter == nil {
		limiter = allowAll{}
	}
	srv := NewServer(config.GatewayConfig{ServerURL: upstreamURL}, limiter, &logger)
	return srv.Handler()
}

func doGateway(handler http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set(headerUserID, userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGatewayForwarding(t *testing.T) {
	upstream, calls := newUpstream(t)
	handler := newGateway(t, upstream.URL, nil)

	t.Run("ValidBodyForwardedVerbatim", func(t *testing.T) {
		body := `{"name":"Ivan","email":"ivan@example.com"}`
		rec := doGateway(handler, http.MethodPost, "/users", "", body)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"forwarded":true}`, rec.Body.String())
		last := (*calls)[len(*calls)-1]
		assert.Equal(t, "/users", last.Path)
		assert.Equal(t, body, last.Body)
	})

	t.Run("QueryAndHeaderPreserved", func(t *testing.T) {
		rec := doGateway(handler, http.MethodGet, "/bookings?state=FUTURE&from=0&size=5", "2", "")

		require.Equal(t, http.StatusOK, rec.Code)
		last := (*calls)[len(*calls)-1]
		assert.Equal(t, "state=FUTURE&from=0&size=5", last.Query)
		assert.Equal(t, "2", last.UserID)
	})
}

func TestGatewayValidation(t *testing.T) {
	upstream, calls := newUpstream(t)
	handler := newGateway(t, upstream.URL, nil)

	rejected := func(t *testing.T, rec *httptest.ResponseRecorder) {
		t.Helper()
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	t.Run("UserMissingEmail", func(t *testing.T) {
		before := len(*calls)
		rec := doGateway(handler, http.MethodPost, "/users", "", `{"name":"Ivan"}`)
		rejected(t, rec)
		assert.Len(t, *calls, before, "nothing forwarded")
	})

	t.Run("UserBadEmail", func(t *testing.T) {
		rec := doGateway(handler, http.MethodPost, "/users", "", `{"name":"Ivan","email":"nope"}`)
		rejected(t, rec)
	})

	t.Run("ItemMissingAvailable", func(t *testing.T) {
		rec := doGateway(handler, http.MethodPost, "/items", "1", `{"name":"Drill","description":"desc"}`)
		rejected(t, rec)
	})

	t.Run("ItemMissingHeader", func(t *testing.T) {
		rec := doGateway(handler, http.MethodPost, "/items", "", `{"name":"Drill","description":"desc","available":true}`)
		rejected(t, rec)
	})

	t.Run("BookingStartInPast", func(t *testing.T) {
		dto := createBookingDTO{
			ItemID: 7,
			Start:  time.Now().Add(-2 * time.Hour),
			End:    time.Now().Add(2 * time.Hour),
		}
		body, _ := json.Marshal(dto)
		rec := doGateway(handler, http.MethodPost, "/bookings", "2", string(body))
		rejected(t, rec)
	})

	t.Run("BookingEndNotAfterStart", func(t *testing.T) {
		start := time.Now().Add(2 * time.Hour)
		dto := createBookingDTO{ItemID: 7, Start: start, End: start}
		body, _ := json.Marshal(dto)
		rec := doGateway(handler, http.MethodPost, "/bookings", "2", string(body))
		rejected(t, rec)
	})

	t.Run("UnknownStateToken", func(t *testing.T) {
		rec := doGateway(handler, http.MethodGet, "/bookings?state=SOMETIMES", "2", "")
		rejected(t, rec)
		assert.Contains(t, rec.Body.String(), "Unknown state")
	})

	t.Run("NegativeFrom", func(t *testing.T) {
		rec := doGateway(handler, http.MethodGet, "/bookings?from=-1", "2", "")
		rejected(t, rec)
	})

	t.Run("ZeroSize", func(t *testing.T) {
		rec := doGateway(handler, http.MethodGet, "/requests/all?size=0", "2", "")
		rejected(t, rec)
	})

	t.Run("ApprovedParamRequired", func(t *testing.T) {
		rec := doGateway(handler, http.MethodPatch, "/bookings/5", "1", "")
		rejected(t, rec)
	})

	t.Run("ValidBookingForwarded", func(t *testing.T) {
		dto := createBookingDTO{
			ItemID: 7,
			Start:  time.Now().Add(time.Hour),
			End:    time.Now().Add(2 * time.Hour),
		}
		body, _ := json.Marshal(dto)
		before := len(*calls)
		rec := doGateway(handler, http.MethodPost, "/bookings", "2", string(body))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, *calls, before+1)
	})
}

func TestGatewayRateLimit(t *testing.T) {
	upstream, calls := newUpstream(t)

	t.Run("DeniedRequestsNeverForwarded", func(t *testing.T) {
		handler := newGateway(t, upstream.URL, denyAll{})

		rec := doGateway(handler, http.MethodGet, "/users", "1", "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Empty(t, *calls)
	})

	t.Run("MemoryLimiterEndToEnd", func(t *testing.T) {
		limiter := ratelimit.NewMemoryLimiter(config.RateLimitConfig{RPS: 1, Burst: 2})
		handler := newGateway(t, upstream.URL, limiter)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			rec := doGateway(handler, http.MethodGet, "/users", "9", "")
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}
