package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{
		BaseURL: srv.URL + "/api/v1",
		Timeout: 2 * time.Second,
		Retries: 2,
		Backoff: time.Millisecond,
		Tokens:  StaticToken("tok-123"),
	})
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew(t *testing.T) {
	t.Run("Should reject relative or non-http base URLs", func(t *testing.T) {
		_, err := New(Options{BaseURL: "/api"})
		assert.Error(t, err)
		_, err = New(Options{BaseURL: "ftp://host/api"})
		assert.Error(t, err)
	})
}

func TestResource_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Should decode a bare array and send token and filters", func(t *testing.T) {
		var gotAuth, gotPath string
		var gotQuery map[string][]string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			gotQuery = r.URL.Query()
			writeJSON(w, 200, `[{"id":"s1","name":"Haircut","price":"250","duration":30,"active":true}]`)
		})
		items, err := c.Services().List(ctx, map[string]string{"category": "Hair"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Haircut", items[0].Name)
		assert.True(t, items[0].Price.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, "Bearer tok-123", gotAuth)
		assert.Equal(t, "/api/v1/admin/services", gotPath)
		assert.Equal(t, []string{"true"}, gotQuery["all"])
		assert.Equal(t, []string{"Hair"}, gotQuery["category"])
	})

	t.Run("Should decode a data envelope", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, `{"data":[{"id":"1","name":"Asha","phone":9876543210}],"meta":{"total":1}}`)
		})
		items, err := c.Staff().List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "9876543210", items[0].Phone)
		assert.True(t, items[0].Active, "missing status defaults to active")
	})

	t.Run("Should treat a null body as an empty list", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, `{"data":null}`)
		})
		items, err := c.Inventory().List(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Should map 404 on a record to NotFoundError", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 404, `{"error":"staff not found"}`)
		})
		err := c.Staff().Delete(ctx, "42")
		var nf *apierr.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "42", nf.ID)
		assert.Equal(t, "staff not found", nf.Message)
	})

	t.Run("Should carry the server message and field", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 409, `{"message":"phone already registered","field":"phone"}`)
		})
		_, err := c.Staff().Create(ctx, models.Staff{Name: "Asha"})
		var se *apierr.ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 409, se.Status)
		assert.Equal(t, "phone already registered", se.Message)
		assert.Equal(t, "phone", se.Field)
	})

	t.Run("Should accept msg as the message key", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 400, `{"msg":"bad date"}`)
		})
		_, err := c.Appointments().List(ctx, map[string]string{"date": "x"})
		assert.Equal(t, "bad date", apierr.UserMessage(err, "fallback"))
	})

	t.Run("Should surface 401 without retrying", func(t *testing.T) {
		var calls atomic.Int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, 401, `{"error":"invalid token"}`)
		})
		_, err := c.Staff().List(ctx, nil)
		assert.True(t, apierr.IsUnauthorized(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should retry reads on gateway errors", func(t *testing.T) {
		var calls atomic.Int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				writeJSON(w, 503, `{}`)
				return
			}
			writeJSON(w, 200, `[]`)
		})
		_, err := c.Staff().List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Should not retry writes", func(t *testing.T) {
		var calls atomic.Int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, 503, `{}`)
		})
		_, err := c.Services().Create(ctx, models.Service{Name: "x"})
		var se *apierr.ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should report an unreachable server as a network error", func(t *testing.T) {
		c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()
		_, err := c.Services().Create(ctx, models.Service{Name: "x"})
		var ne *apierr.NetworkError
		assert.ErrorAs(t, err, &ne)
	})
}

func TestResource_Mutations(t *testing.T) {
	ctx := context.Background()

	t.Run("Should patch the active flag for a status toggle", func(t *testing.T) {
		var method, path string
		var body map[string]any
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, 200, `{"data":{"id":"s1","name":"Asha","active":false}}`)
		})
		got, err := c.Staff().ToggleStatus(ctx, models.Staff{ID: "s1", Active: false})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPatch, method)
		assert.Equal(t, "/api/v1/admin/staff/s1/status", path)
		assert.Equal(t, map[string]any{"active": false}, body)
		assert.False(t, got.Active)
	})

	t.Run("Should send the appointment status with PUT", func(t *testing.T) {
		var method string
		var body map[string]string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, 200, `{"data":{"id":"a1","status":"confirmed"}}`)
		})
		got, err := c.Appointments().ToggleStatus(ctx, models.Appointment{ID: "a1", Status: "confirmed"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, method)
		assert.Equal(t, map[string]string{"status": "confirmed"}, body)
		assert.Equal(t, "confirmed", got.Status)
	})

	t.Run("Should refuse a toggle on resources without status", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := c.Inventory().ToggleStatus(ctx, models.InventoryItem{ID: "i1"})
		assert.Error(t, err)
	})

	t.Run("Should post stock movements", func(t *testing.T) {
		var path string
		var body map[string]any
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, 200, `{"data":{"id":"i1","name":"Shampoo","quantity":7,"threshold":5}}`)
		})
		item, err := c.Inventory().Use(ctx, "i1", 3, "svc-1", "")
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/admin/inventory/i1/use", path)
		assert.Equal(t, "svc-1", body["service_id"])
		assert.EqualValues(t, 3, body["amount"])
		assert.Equal(t, 7, item.Quantity)
	})
}

func TestNormalization(t *testing.T) {
	t.Run("Should resolve nested service names and default the total", func(t *testing.T) {
		raw := `{"id":"a1","customer_name":" Ravi ","customer_phone":9000000001,
			"appointment_date":"2024-05-01","status":"",
			"services":[{"service":{"id":"s1","name":"Haircut","price":250}},{"service_id":"s2","name":"Shave","price":"100"}],
			"combo":{"id":"c1","name":"Groom"}}`
		a, err := decodeAppointment(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, "Ravi", a.CustomerName)
		assert.Equal(t, "9000000001", a.CustomerPhone)
		assert.Equal(t, models.StatusPending, a.Status)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), a.AppointmentDate)
		require.Len(t, a.Services, 2)
		assert.Equal(t, "s1", a.Services[0].ServiceID)
		assert.Equal(t, "Haircut", a.Services[0].Name)
		assert.True(t, a.Total.Equal(decimal.NewFromInt(350)))
		require.NotNil(t, a.ComboID)
		assert.Equal(t, "c1", *a.ComboID)
		assert.Equal(t, "Groom", a.ComboName)
	})

	t.Run("Should recompute combo totals when absent", func(t *testing.T) {
		raw := `{"id":"c1","name":"Groom","gender":"Male","discount":10,
			"services":[{"service":{"id":"s2","name":"Shave","price":100,"duration":15}},
			            {"service_id":"s1","name":"Haircut","price":200,"duration":30}]}`
		c, err := decodeCombo(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, "male", c.Gender)
		assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(270)))
		assert.Equal(t, 45, c.TotalDuration)
		assert.Equal(t, []int{1, 2}, []int{c.Items[0].Sequence, c.Items[1].Sequence})
	})

	t.Run("Should pick the staff name from the nested staff object", func(t *testing.T) {
		raw := `{"id":"x","staff":{"id":"st1","name":"Asha"},"date":"2024-05-01T09:30:00Z","check_in":"2024-05-01T09:30:00Z"}`
		a, err := decodeAttendance(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, "st1", a.StaffID)
		assert.Equal(t, "Asha", a.StaffName)
		assert.Equal(t, models.AttendancePresent, a.Status)
		assert.Nil(t, a.CheckOut)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), a.Date)
	})

	t.Run("Should reject unparseable dates", func(t *testing.T) {
		_, err := decodeStaff(json.RawMessage(`{"id":"1","dob":"yesterday"}`))
		assert.Error(t, err)
	})
}

func TestFileToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	ft := &FileToken{Path: path}
	assert.Empty(t, ft.Token())

	require.NoError(t, ft.Save("abc"))
	assert.Equal(t, "abc", (&FileToken{Path: path}).Token())

	require.NoError(t, ft.Clear())
	assert.Empty(t, ft.Token())
	assert.Empty(t, (&FileToken{Path: path}).Token())
	require.NoError(t, ft.Clear(), "clearing twice is fine")
}

func TestClient_Watch(t *testing.T) {
	up := websocket.Upgrader{}
	var gotAuth, gotResources string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotResources = r.URL.Query().Get("resources")
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteJSON(models.ChangeEvent{Resource: "staff", Action: models.ActionCreated, ID: "s9"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []models.ChangeEvent
	err := c.Watch(ctx, func(ev models.ChangeEvent) {
		got = append(got, ev)
		cancel()
	}, "staff", "services")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s9", got[0].ID)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "staff,services", gotResources)
}
