package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/salon_backoffice/internal/apiclient"
	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/screens"
	"github.com/zaqqye/salon_backoffice/internal/ws"
)

type liveServer struct {
	*harness
	client *apiclient.Client
}

// newLiveServer serves the router over a real listener with the change
// feed running, and points an API client at it.
func newLiveServer(t *testing.T) *liveServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewEventHub(logger.Nop())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	h := newHarness(t, hub)
	srv := httptest.NewServer(h.router)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Options{
		BaseURL: srv.URL + "/api/v1",
		Timeout: 5 * time.Second,
		Retries: 1,
		Backoff: time.Millisecond,
		Tokens:  apiclient.StaticToken(h.token),
	})
	require.NoError(t, err)
	return &liveServer{harness: h, client: client}
}

func confirmAll() listview.Deps {
	return listview.Deps{
		Confirmer: listview.ConfirmerFunc(func(context.Context, string) bool { return true }),
		Logger:    logger.Nop(),
	}
}

func TestServicesScreen_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newLiveServer(t)

	ctrl, err := listview.New(screens.Services(s.client.Services()), confirmAll())
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	require.NoError(t, ctrl.Refresh(ctx))
	assert.Empty(t, ctrl.View().Rows)

	var id string
	t.Run("Should show a created service after a fresh fetch", func(t *testing.T) {
		saved, err := ctrl.Create(ctx, models.Service{
			Name: "Haircut", Price: decimal.NewFromInt(300), Duration: 30, Category: "Hair", Gender: "unisex", Active: true,
		})
		require.NoError(t, err)
		require.NotEmpty(t, saved.ID)
		id = saved.ID

		other, err := listview.New(screens.Services(s.client.Services()), confirmAll())
		require.NoError(t, err)
		require.NoError(t, other.Refresh(ctx))
		rows := other.View().Rows
		require.Len(t, rows, 1)
		assert.Equal(t, "Haircut", rows[0].Name)
		assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(300)))
	})

	t.Run("Should surface a duplicate name as a field error", func(t *testing.T) {
		_, err := ctrl.Create(ctx, models.Service{Name: "Haircut", Price: decimal.NewFromInt(1), Duration: 5, Category: "Hair", Gender: "unisex"})
		var se *apierr.ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusConflict, se.Status)
		assert.Equal(t, "name", se.Field)
	})

	t.Run("Should persist a status toggle", func(t *testing.T) {
		toggled, err := ctrl.ToggleStatus(ctx, id)
		require.NoError(t, err)
		assert.False(t, toggled.Active)

		got, err := s.client.Services().Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("Should drop a deleted service on the next fetch", func(t *testing.T) {
		require.NoError(t, ctrl.Delete(ctx, id))
		assert.Empty(t, ctrl.View().Rows)
		require.NoError(t, ctrl.Refresh(ctx))
		assert.Empty(t, ctrl.View().Rows)
	})

	t.Run("Should drop a row another operator already deleted", func(t *testing.T) {
		gone := s.create("/api/v1/admin/services", servicePayload("Beard Trim", "120", 15))
		require.NoError(t, ctrl.Refresh(ctx))
		require.Len(t, ctrl.View().Rows, 1)

		rec, _ := s.do(http.MethodDelete, "/api/v1/admin/services/"+gone, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		err := ctrl.Delete(ctx, gone)
		assert.True(t, apierr.IsNotFound(err))
		assert.Empty(t, ctrl.View().Rows)
	})
}

func TestInventoryScreen_LowStockFilter(t *testing.T) {
	ctx := context.Background()
	s := newLiveServer(t)
	s.create("/api/v1/admin/inventory", map[string]any{"name": "Wax", "category": "skin", "quantity": 1, "unit": "box", "threshold": 2})
	s.create("/api/v1/admin/inventory", map[string]any{"name": "Foil", "category": "hair", "quantity": 9, "unit": "pcs", "threshold": 2})

	ctrl, err := listview.New(screens.Inventory(s.client.Inventory().Resource), confirmAll())
	require.NoError(t, err)
	require.NoError(t, ctrl.Refresh(ctx))
	require.Len(t, ctrl.View().Rows, 2)

	t.Run("Should narrow to items below threshold locally", func(t *testing.T) {
		require.NoError(t, ctrl.Dispatch(ctx, listview.SetFlag{Name: "low_stock", On: true}))
		rows := ctrl.View().Rows
		require.Len(t, rows, 1)
		assert.Equal(t, "Wax", rows[0].Name)
	})

	t.Run("Should reflect a restock after refetching", func(t *testing.T) {
		item, err := s.client.Inventory().Restock(ctx, ctrl.View().Rows[0].ID, 5, "delivery")
		require.NoError(t, err)
		assert.Equal(t, 6, item.Quantity)
		require.NoError(t, ctrl.Refresh(ctx))
		assert.Empty(t, ctrl.View().Rows)
	})
}

func TestChangeFeed(t *testing.T) {
	s := newLiveServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan models.ChangeEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Watch(ctx, func(ev models.ChangeEvent) { events <- ev }, models.ResourceStaff)
	}()

	t.Run("Should push staff changes to subscribers", func(t *testing.T) {
		// The subscription registers asynchronously; keep creating until an
		// event arrives.
		var got models.ChangeEvent
		phones := []string{"9000000011", "9000000012", "9000000013", "9000000014", "9000000015"}
		for i, phone := range phones {
			s.create("/api/v1/admin/staff", staffPayload("Tara", phone, "20000000001"+string(rune('0'+i))))
			select {
			case got = <-events:
			case <-time.After(200 * time.Millisecond):
				continue
			}
			break
		}
		assert.Equal(t, models.ResourceStaff, got.Resource)
		assert.Equal(t, models.ActionCreated, got.Action)
		assert.NotEmpty(t, got.ID)
	})

	t.Run("Should filter out other resources", func(t *testing.T) {
		s.create("/api/v1/admin/services", servicePayload("Facial", "500", 45))
		select {
		case ev := <-events:
			assert.Equal(t, models.ResourceStaff, ev.Resource)
		case <-time.After(200 * time.Millisecond):
		}
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Error("watch did not stop after cancel")
	}
}
