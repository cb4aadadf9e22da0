package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/catalog"
	"github.com/abhajavat-web/efvb/internal/httpx"
)

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := httpx.ContextWithUser(r.Context(), "u1", "u1@example.com", "USER")
	return r.WithContext(ctx)
}

func newHandlerWithMocks(t *testing.T) (*HTTPHandler, serviceMocks) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := serviceMocks{
		entries:   NewMockEntryRepository(ctrl),
		purchases: NewMockPurchaseRepository(ctrl),
		progress:  NewMockProgressRepository(ctrl),
		fallback:  NewMockFallbackSource(ctrl),
		catalog:   NewMockCatalog(ctrl),
	}
	svc := NewService(m.entries, m.purchases, m.progress, m.fallback, m.catalog, zap.NewNop())
	return NewHTTPHandler(svc), m
}

func TestHTTPHandler_MyLibrary(t *testing.T) {
	t.Run("empty library is an empty array", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		m.entries.EXPECT().ListByUser(gomock.Any(), "u1").Return(nil, nil)
		m.fallback.EXPECT().EntriesFor(gomock.Any(), "u1@example.com").Return(nil, nil)
		m.purchases.EXPECT().ListDigitalByUser(gomock.Any(), "u1").Return(nil, nil)

		w := httptest.NewRecorder()
		handler.MyLibrary(w, authedRequest(http.MethodGet, "/library/my-library", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []Entry `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
	})

	t.Run("store fault is internal", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		m.entries.EXPECT().ListByUser(gomock.Any(), "u1").Return(nil, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.MyLibrary(w, authedRequest(http.MethodGet, "/library/my-library", ""))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Progress(t *testing.T) {
	t.Run("save then read", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		saved := Progress{ProductID: "p1", Progress: 30, Total: 120}
		m.progress.EXPECT().Upsert(gomock.Any(), "u1", "p1", 30.0, 120.0).Return(saved, nil)
		m.progress.EXPECT().Get(gomock.Any(), "u1", "p1").Return(saved, nil)

		w := httptest.NewRecorder()
		handler.SaveProgress(w, authedRequest(http.MethodPost, "/library/progress",
			`{"productId":"p1","progress":30,"total":120}`))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r := authedRequest(http.MethodGet, "/library/progress/p1", "")
		r.SetPathValue("productId", "p1")
		handler.GetProgress(w, r)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data Progress `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 30.0, resp.Data.Progress)
		assert.Equal(t, 120.0, resp.Data.Total)
	})

	t.Run("never-saved pair reads zero default", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		m.progress.EXPECT().Get(gomock.Any(), "u1", "p9").Return(Progress{ProductID: "p9"}, nil)

		w := httptest.NewRecorder()
		r := authedRequest(http.MethodGet, "/library/progress/p9", "")
		r.SetPathValue("productId", "p9")
		handler.GetProgress(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data Progress `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Zero(t, resp.Data.Progress)
		assert.Zero(t, resp.Data.Total)
	})

	t.Run("missing product id rejected", func(t *testing.T) {
		handler, _ := newHandlerWithMocks(t)

		w := httptest.NewRecorder()
		handler.SaveProgress(w, authedRequest(http.MethodPost, "/library/progress",
			`{"progress":30,"total":120}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Add(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		m.catalog.EXPECT().GetByID(gomock.Any(), "p1").Return(ebookProduct, nil)
		m.entries.EXPECT().Add(gomock.Any(), "u1", gomock.Any()).Return(nil)
		m.entries.EXPECT().ListByUser(gomock.Any(), "u1").Return([]Entry{{ProductID: "p1"}}, nil)

		w := httptest.NewRecorder()
		handler.Add(w, authedRequest(http.MethodPost, "/library/add", `{"productId":"p1"}`))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("already owned", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		m.catalog.EXPECT().GetByID(gomock.Any(), "p1").Return(ebookProduct, nil)
		m.entries.EXPECT().Add(gomock.Any(), "u1", gomock.Any()).Return(ErrAlreadyOwned)

		w := httptest.NewRecorder()
		handler.Add(w, authedRequest(http.MethodPost, "/library/add", `{"productId":"p1"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unresolvable", func(t *testing.T) {
		handler, m := newHandlerWithMocks(t)
		m.catalog.EXPECT().GetByID(gomock.Any(), "nope").Return(catalog.Product{}, catalog.ErrNotFound)

		w := httptest.NewRecorder()
		handler.Add(w, authedRequest(http.MethodPost, "/library/add", `{"productId":"nope"}`))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
