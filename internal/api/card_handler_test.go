package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCard(t *testing.T) {
	t.Parallel()

	t.Run("creates a card with default scheduling state", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		var resp CardResponse
		w := env.do(t, http.MethodPost, "/api/cards", CreateCardRequest{
			Front:      "水",
			Back:       "water",
			Reading:    "みず",
			JLPTLevels: []string{"N5"},
		}, &resp)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "水", resp.Front)
		assert.Equal(t, "みず", resp.Reading)
		assert.Equal(t, []string{"N5"}, resp.JLPTLevels)
		assert.Equal(t, 2.5, resp.EaseFactor)
		assert.Equal(t, 0, resp.Repetitions)
		assert.Equal(t, "unset", resp.MemorizationStatus)
		assert.Equal(t, "2025-06-15", resp.NextReviewDate)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/cards", CreateCardRequest{Front: "水"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/cards", "not an object", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBatchCreateCards(t *testing.T) {
	t.Parallel()

	t.Run("creates every card in the batch", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		var resp []CardResponse
		w := env.do(t, http.MethodPost, "/api/cards/batch", BatchCreateCardsRequest{
			Cards: []CreateCardRequest{
				{Front: "水", Back: "water", JLPTLevels: []string{"N5"}},
				{Front: "火", Back: "fire", JLPTLevels: []string{"N5"}},
				{Front: "木", Back: "tree"},
			},
		}, &resp)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, resp, 3)
		assert.Equal(t, "火", resp[1].Front)

		var listed []CardResponse
		w = env.do(t, http.MethodGet, "/api/cards", nil, &listed)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, listed, 3)
	})

	t.Run("rejects the whole batch when one card is invalid", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/cards/batch", BatchCreateCardsRequest{
			Cards: []CreateCardRequest{
				{Front: "水", Back: "water"},
				{Front: "火"},
			},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var listed []CardResponse
		w = env.do(t, http.MethodGet, "/api/cards", nil, &listed)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, listed)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/cards/batch", BatchCreateCardsRequest{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListCards(t *testing.T) {
	t.Parallel()

	t.Run("filters compose with AND", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seedCards(t, 2, []string{"N5"})
		env.seedCards(t, 1, []string{"N1"})

		var all []CardResponse
		w := env.do(t, http.MethodGet, "/api/cards", nil, &all)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, all, 3)

		var n5 []CardResponse
		w = env.do(t, http.MethodGet, "/api/cards?jlpt_level=N5", nil, &n5)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, n5, 2)

		var none []CardResponse
		w = env.do(t, http.MethodGet, "/api/cards?jlpt_level=N5&memorization_status=memorized", nil, &none)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, none)
	})

	t.Run("all wildcard matches everything", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seedCards(t, 2, []string{"N5"})

		var cards []CardResponse
		w := env.do(t, http.MethodGet, "/api/cards?jlpt_level=all&difficulty_level=all", nil, &cards)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, cards, 2)
	})

	t.Run("due=true narrows to the due-set", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seedCards(t, 3, []string{"N5"})

		var due []CardResponse
		w := env.do(t, http.MethodGet, "/api/cards?due=true", nil, &due)
		require.Equal(t, http.StatusOK, w.Code)
		// new cards are always due
		assert.Len(t, due, 3)
	})
}

func TestGetCard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seeded := env.seedCards(t, 1, []string{"N4"})

	t.Run("found", func(t *testing.T) {
		var resp CardResponse
		w := env.do(t, http.MethodGet, "/api/cards/"+seeded[0].ID, nil, &resp)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, seeded[0].ID, resp.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/cards/"+uuid.NewString(), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/cards/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seeded := env.seedCards(t, 1, nil)

	w := env.do(t, http.MethodDelete, "/api/cards/"+seeded[0].ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/cards/"+seeded[0].ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
