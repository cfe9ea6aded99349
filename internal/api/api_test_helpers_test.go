package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-app/kotoba-api/internal/daily"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/domain/srs"
	"github.com/kotoba-app/kotoba-api/internal/platform/memory"
	"github.com/kotoba-app/kotoba-api/internal/study"
)

// testEnv wires the handlers over in-memory stores the way cmd/server does
// over postgres.
type testEnv struct {
	router *chi.Mux
	cards  *memory.CardStore
}

func testTime(t *testing.T, s string) func() time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return func() time.Time { return d.Time() }
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := testTime(t, "2025-06-15")

	cards := memory.NewCardStore()
	progress := memory.NewProgressStore()

	manager := study.NewManager(cards, srs.NewDefaultService(), study.Options{
		AutoAdvance:     true,
		ClicksToAdvance: 3,
		Rand:            rand.New(rand.NewSource(1)),
		Now:             now,
	}, log)

	tracker := daily.NewTracker(cards, progress, daily.Options{
		TargetWords: 5,
		Rand:        rand.New(rand.NewSource(1)),
		Now:         now,
	}, log)
	require.NoError(t, tracker.Init(context.Background()))

	cardHandler := NewCardHandler(cards, log)
	studyHandler := NewStudyHandler(manager, log)
	dailyHandler := NewDailyHandler(tracker, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Post("/", cardHandler.CreateCard)
			r.Post("/batch", cardHandler.BatchCreateCards)
			r.Get("/{id}", cardHandler.GetCard)
			r.Delete("/{id}", cardHandler.DeleteCard)
		})
		r.Route("/study/sessions", func(r chi.Router) {
			r.Post("/", studyHandler.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", studyHandler.GetSession)
				r.Delete("/", studyHandler.DeleteSession)
				r.Post("/restart", studyHandler.Restart)
				r.Post("/flip", studyHandler.Flip)
				r.Post("/next", studyHandler.Next)
				r.Post("/prev", studyHandler.Prev)
				r.Post("/shuffle", studyHandler.Shuffle)
				r.Post("/reset-order", studyHandler.ResetOrder)
				r.Post("/reset-all", studyHandler.ResetAll)
				r.Post("/status", studyHandler.SetStatus)
				r.Post("/difficulty", studyHandler.SetDifficulty)
				r.Post("/rate", studyHandler.Rate)
			})
		})
		r.Route("/daily", func(r chi.Router) {
			r.Get("/", dailyHandler.GetState)
			r.Post("/learned/{id}", dailyHandler.MarkLearned)
			r.Post("/learn-all", dailyHandler.MarkAllLearned)
			r.Post("/refresh", dailyHandler.RefreshWords)
			r.Post("/target", dailyHandler.SetTarget)
			r.Post("/dismiss-notification", dailyHandler.DismissNotification)
		})
	})

	return &testEnv{router: r, cards: cards}
}

// do executes a request against the test router, encoding body (if any) as
// JSON and decoding the response into out (if non-nil).
func (e *testEnv) do(t *testing.T, method, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
			"response body: %s", w.Body.String())
	}
	return w
}

// seedCards inserts n cards and returns their responses in creation order.
func (e *testEnv) seedCards(t *testing.T, n int, levels []string) []CardResponse {
	t.Helper()

	out := make([]CardResponse, 0, n)
	for i := 0; i < n; i++ {
		var resp CardResponse
		w := e.do(t, http.MethodPost, "/api/cards", CreateCardRequest{
			Front:      string(rune('a' + i)),
			Back:       "back",
			JLPTLevels: levels,
		}, &resp)
		require.Equal(t, http.StatusCreated, w.Code)
		out = append(out, resp)
	}
	return out
}
