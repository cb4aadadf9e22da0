package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/catalog"
	"github.com/abhajavat-web/efvb/internal/httpx"
	"github.com/abhajavat-web/efvb/internal/testutil"
)

const ebookBody = "0123456789abcdefghij" // 20 bytes

type handlerFixture struct {
	handler      *HTTPHandler
	products     *MockProductLookup
	entitlements *MockEntitlementChecker
	product      catalog.Product
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "books"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "books", "origin.epub"), []byte(ebookBody), 0o644))

	loc, err := NewLocator(root)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	products := NewMockProductLookup(ctrl)
	entitlements := NewMockEntitlementChecker(ctrl)

	return &handlerFixture{
		handler:      NewHTTPHandler(NewGate(products, entitlements), loc, zap.NewNop()),
		products:     products,
		entitlements: entitlements,
		product:      testutil.TestEbook,
	}
}

func (f *handlerFixture) request(t *testing.T, rangeHeader string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/content/ebook/"+f.product.ID, nil)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), "u1", "u1@example.com", "USER"))
	r.SetPathValue("productId", f.product.ID)
	if rangeHeader != "" {
		r.Header.Set("Range", rangeHeader)
	}
	return r
}

func TestServeEbook(t *testing.T) {
	t.Run("full file without range", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(f.product, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(true, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ebookBody, rec.Body.String())
		assert.Equal(t, "application/epub+zip", rec.Header().Get("Content-Type"))
		assert.Equal(t, "20", rec.Header().Get("Content-Length"))
		assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
	})

	t.Run("partial content for a range", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(f.product, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(true, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, "bytes=5-9"))

		assert.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "56789", rec.Body.String())
		assert.Equal(t, "bytes 5-9/20", rec.Header().Get("Content-Range"))
		assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	})

	t.Run("open ended range reaches the last byte", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(f.product, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(true, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, "bytes=15-"))

		assert.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "fghij", rec.Body.String())
		assert.Equal(t, "bytes 15-19/20", rec.Header().Get("Content-Range"))
	})

	t.Run("unsatisfiable range gets 416 with size", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(f.product, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(true, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, "bytes=100-"))

		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
		assert.Equal(t, "bytes */20", rec.Header().Get("Content-Range"))
		assert.NotContains(t, rec.Body.String(), ebookBody)
	})

	t.Run("unowned product streams nothing", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(f.product, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(false, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotContains(t, rec.Body.String(), ebookBody)
		assert.Contains(t, rec.Body.String(), "NOT_ENTITLED")
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(catalog.Product{}, catalog.ErrNotFound)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("escaping file reference is an internal error", func(t *testing.T) {
		f := newHandlerFixture(t)
		escaped := f.product
		escaped.FilePath = "../secret.txt"
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(escaped, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(true, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, ""))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing file after authorization", func(t *testing.T) {
		f := newHandlerFixture(t)
		gone := f.product
		gone.FilePath = "books/gone.epub"
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(gone, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(true, nil)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("entitlement fault is an internal error", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.products.EXPECT().GetByID(gomock.Any(), f.product.ID).Return(f.product, nil)
		f.entitlements.EXPECT().Owns(gomock.Any(), "u1", f.product.ID).Return(false, context.DeadlineExceeded)

		rec := httptest.NewRecorder()
		f.handler.ServeEbook(rec, f.request(t, ""))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServeAudio(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "audio"), 0o755))
	body := strings.Repeat("x", 30)
	require.NoError(t, os.WriteFile(filepath.Join(root, "audio", "mindos.mp3"), []byte(body), 0o644))

	loc, err := NewLocator(root)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	products := NewMockProductLookup(ctrl)
	entitlements := NewMockEntitlementChecker(ctrl)
	handler := NewHTTPHandler(NewGate(products, entitlements), loc, zap.NewNop())

	audio := catalog.Product{ID: "p-audio", Title: "MINDOS", Type: catalog.TypeAudiobook, FilePath: "audio/mindos.mp3"}
	products.EXPECT().GetByID(gomock.Any(), "p-audio").Return(audio, nil)
	entitlements.EXPECT().Owns(gomock.Any(), "u1", "p-audio").Return(true, nil)

	r := httptest.NewRequest(http.MethodGet, "/content/audio/p-audio", nil)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), "u1", "u1@example.com", "USER"))
	r.SetPathValue("productId", "p-audio")
	r.Header.Set("Range", "bytes=0-9")

	rec := httptest.NewRecorder()
	handler.ServeAudio(rec, r)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes 0-9/30", rec.Header().Get("Content-Range"))
	assert.Len(t, rec.Body.String(), 10)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
