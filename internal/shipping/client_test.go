package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCourier struct {
	logins      atomic.Int32
	tracks      atomic.Int32
	rejectToken func(attempt int32) bool
}

func (f *fakeCourier) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/external/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds["email"] != "ops@example.com" || creds["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n := f.logins.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + string(rune('0'+n))})
	})
	mux.HandleFunc("GET /v1/external/courier/track/awb/{awb}", func(w http.ResponseWriter, r *http.Request) {
		attempt := f.tracks.Add(1)
		if f.rejectToken != nil && f.rejectToken(attempt) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("awb") == "MISSING" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(Tracking{
			AWB:     r.PathValue("awb"),
			Courier: "BlueDart",
			Status:  "In Transit",
			Checkpoints: []Checkpoint{
				{Status: "Picked Up", Location: "Pune", Date: "2025-01-02"},
			},
		})
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeCourier) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "ops@example.com", "hunter22", 100)
}

func TestClientTrack(t *testing.T) {
	t.Run("logs in once and tracks", func(t *testing.T) {
		f := &fakeCourier{}
		c := newTestClient(t, f)

		tr, err := c.Track(context.Background(), "AWB123")
		require.NoError(t, err)
		assert.Equal(t, "AWB123", tr.AWB)
		assert.Equal(t, "In Transit", tr.Status)
		require.Len(t, tr.Checkpoints, 1)
		assert.Equal(t, int32(1), f.logins.Load())
	})

	t.Run("token is leased across calls", func(t *testing.T) {
		f := &fakeCourier{}
		c := newTestClient(t, f)

		_, err := c.Track(context.Background(), "AWB123")
		require.NoError(t, err)
		_, err = c.Track(context.Background(), "AWB456")
		require.NoError(t, err)
		assert.Equal(t, int32(1), f.logins.Load(), "second call should reuse the lease")
	})

	t.Run("stale token forces exactly one re-login", func(t *testing.T) {
		f := &fakeCourier{}
		f.rejectToken = func(attempt int32) bool { return attempt == 1 }
		c := newTestClient(t, f)

		tr, err := c.Track(context.Background(), "AWB123")
		require.NoError(t, err)
		assert.Equal(t, "AWB123", tr.AWB)
		assert.Equal(t, int32(2), f.logins.Load())
		assert.Equal(t, int32(2), f.tracks.Load())
	})

	t.Run("persistent rejection gives up after the retry", func(t *testing.T) {
		f := &fakeCourier{}
		f.rejectToken = func(int32) bool { return true }
		c := newTestClient(t, f)

		_, err := c.Track(context.Background(), "AWB123")
		require.Error(t, err)
		assert.Equal(t, int32(2), f.tracks.Load(), "retry loop must be bounded")
	})

	t.Run("unknown awb", func(t *testing.T) {
		f := &fakeCourier{}
		c := newTestClient(t, f)

		_, err := c.Track(context.Background(), "MISSING")
		assert.ErrorIs(t, err, ErrTrackingNotFound)
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := &fakeCourier{}
		srv := httptest.NewServer(f.handler())
		t.Cleanup(srv.Close)
		c := NewClient(srv.URL, "ops@example.com", "wrong", 100)

		_, err := c.Track(context.Background(), "AWB123")
		require.Error(t, err)
		assert.Equal(t, int32(0), f.tracks.Load())
	})
}
