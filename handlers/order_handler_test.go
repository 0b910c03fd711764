package handlers

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/errors"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", errors.NewNotFoundError(errors.OrderNotFoundError), http.StatusNotFound},
		{"forbidden", errors.NewForbiddenError(errors.NotYourOrderError), http.StatusForbidden},
		{"conflict", errors.NewConflictError(errors.OrderSettledError), http.StatusConflict},
		{"store", errors.NewStoreError(errors.DatabaseError, nil), http.StatusInternalServerError},
		{"anything else", stderrors.New("bad payload"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, statusForError(tc.err))

			recorder := httptest.NewRecorder()
			writeError(recorder, tc.err)
			assert.Equal(t, tc.expected, recorder.Code)
		})
	}
}

func TestParseOrderFilter(t *testing.T) {
	t.Run("reads all listing controls", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?txt=beach&sortField=startDate&sortDir=-1&pageIdx=2", nil)

		filter := parseOrderFilter(req)

		assert.Equal(t, "beach", filter.Txt)
		assert.Equal(t, "startDate", filter.SortField)
		assert.Equal(t, -1, filter.SortDir)
		require.NotNil(t, filter.PageIdx)
		assert.Equal(t, 2, *filter.PageIdx)
	})

	t.Run("missing page index means no windowing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)

		filter := parseOrderFilter(req)

		assert.Nil(t, filter.PageIdx)
		assert.Zero(t, filter.SortDir)
		assert.Empty(t, filter.SortField)
	})

	t.Run("garbage page index is ignored", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?pageIdx=abc", nil)

		filter := parseOrderFilter(req)

		assert.Nil(t, filter.PageIdx)
	})
}

func TestMergeOrderPayload(t *testing.T) {
	existing := func() *domain.Order {
		return &domain.Order{
			ID:         primitive.NewObjectID(),
			Host:       domain.HostSnapshot{ID: primitive.NewObjectID(), FullName: "Mika Host"},
			Guest:      domain.GuestSnapshot{ID: primitive.NewObjectID(), FullName: "Gal Guest"},
			Stay:       domain.StaySnapshot{ID: primitive.NewObjectID(), Name: "Ribariza Treehouse", Price: 100},
			TotalPrice: 100,
			StartDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			Status:     domain.Pending,
			Msgs:       []domain.Message{},
		}
	}

	t.Run("overlays only the sent fields", func(t *testing.T) {
		order := existing()
		payload := map[string]interface{}{
			"status":     "approved",
			"totalPrice": 250,
		}

		err := mergeOrderPayload(payload, order)

		require.NoError(t, err)
		assert.Equal(t, domain.Approved, order.Status)
		assert.Equal(t, 250.0, order.TotalPrice)
		assert.True(t, order.StartDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("parses RFC3339 dates", func(t *testing.T) {
		order := existing()
		payload := map[string]interface{}{
			"startDate": "2024-07-01T00:00:00Z",
			"endDate":   "2024-07-08T00:00:00Z",
		}

		err := mergeOrderPayload(payload, order)

		require.NoError(t, err)
		assert.True(t, order.StartDate.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, order.EndDate.Equal(time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("identity and snapshots never change", func(t *testing.T) {
		order := existing()
		originalID := order.ID
		originalHost := order.Host
		payload := map[string]interface{}{
			"_id":    primitive.NewObjectID().Hex(),
			"id":     primitive.NewObjectID().Hex(),
			"host":   map[string]interface{}{"fullname": "Impostor"},
			"guest":  map[string]interface{}{"fullname": "Impostor"},
			"stay":   map[string]interface{}{"price": 1},
			"status": "declined",
		}

		err := mergeOrderPayload(payload, order)

		require.NoError(t, err)
		assert.Equal(t, originalID, order.ID)
		assert.Equal(t, originalHost, order.Host)
		assert.Equal(t, "Gal Guest", order.Guest.FullName)
		assert.Equal(t, 100.0, order.Stay.Price)
		assert.Equal(t, domain.Declined, order.Status)
	})

	t.Run("decodes msgs with author ids", func(t *testing.T) {
		order := existing()
		authorID := primitive.NewObjectID()
		payload := map[string]interface{}{
			"msgs": []interface{}{
				map[string]interface{}{
					"id":  "m1",
					"txt": "hello",
					"by":  map[string]interface{}{"id": authorID.Hex(), "fullname": "Gal Guest"},
				},
			},
		}

		err := mergeOrderPayload(payload, order)

		require.NoError(t, err)
		require.Len(t, order.Msgs, 1)
		assert.Equal(t, "m1", order.Msgs[0].ID)
		assert.Equal(t, authorID, order.Msgs[0].By.ID)
	})

	t.Run("guest counts coerce to ints", func(t *testing.T) {
		order := existing()
		payload := map[string]interface{}{
			"guestCountMap": map[string]interface{}{"adults": float64(2), "kids": float64(1)},
		}

		err := mergeOrderPayload(payload, order)

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"adults": 2, "kids": 1}, order.GuestCountMap)
	})
}
