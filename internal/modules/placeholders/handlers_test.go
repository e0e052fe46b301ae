package placeholders

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	NewHandler(zerolog.Nop()).RegisterRoutes(r)
	return r
}

func TestEmptyLists(t *testing.T) {
	router := newRouter()

	for _, path := range []string{"/timelines", "/politicians", "/alerts", "/reports"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestCreateAlert(t *testing.T) {
	router := newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`{"symbol":"AAPL","above":180}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`[1,2]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
