package routes

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointments(t *testing.T) {
	h := newHarness(t, nil)
	cut := h.create("/api/v1/admin/services", servicePayload("Haircut", "300", 30))
	shave := h.create("/api/v1/admin/services", servicePayload("Shave", "150", 15))
	combo := h.create("/api/v1/admin/combos", map[string]any{
		"name": "Groom", "gender": "male", "discount": 20,
		"services": []map[string]any{{"service_id": cut}, {"service_id": shave}},
	})

	booking := func(date, slot string) map[string]any {
		return map[string]any{
			"customer_name":    "Nikhil",
			"customer_phone":   9812345678,
			"appointment_date": date,
			"time_slot":        slot,
			"services":         []map[string]any{{"service_id": shave}},
			"combo_id":         combo,
		}
	}

	var appt string
	t.Run("Should total the services and the combo", func(t *testing.T) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/appointments", booking("2026-10-20", "10:30"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		data := dataOf(t, body)
		appt = data["id"].(string)
		// 150 + (300 + 150) * 0.8
		assert.True(t, decimal.RequireFromString(data["total"].(string)).Equal(decimal.NewFromInt(510)))
		assert.Equal(t, "Groom", data["combo_name"])
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, "9812345678", data["customer_phone"])
	})

	t.Run("Should need a service or a combo", func(t *testing.T) {
		payload := booking("2026-10-20", "11:00")
		delete(payload, "services")
		delete(payload, "combo_id")
		rec, body := h.do(http.MethodPost, "/api/v1/admin/appointments", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "services", body["field"])
	})

	t.Run("Should reject an impossible time slot", func(t *testing.T) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/appointments", booking("2026-10-20", "25:61"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "time_slot", body["field"])
	})

	t.Run("Should filter by day and status", func(t *testing.T) {
		h.create("/api/v1/admin/appointments", booking("2026-10-21", "09:00"))

		_, body := h.do(http.MethodGet, "/api/v1/admin/appointments?date=2026-10-20", nil)
		assert.Len(t, listOf(t, body), 1)

		rec, body := h.do(http.MethodPut, "/api/v1/admin/appointments/"+appt+"/status", map[string]any{"status": "confirmed"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "confirmed", dataOf(t, body)["status"])

		_, body = h.do(http.MethodGet, "/api/v1/admin/appointments?status=confirmed", nil)
		assert.Len(t, listOf(t, body), 1)

		rec, _ = h.do(http.MethodGet, "/api/v1/admin/appointments?status=lost", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should mark a moved appointment rescheduled", func(t *testing.T) {
		rec, body := h.do(http.MethodPut, "/api/v1/admin/appointments/"+appt+"/reschedule", map[string]any{
			"appointment_date": "2026-10-22", "time_slot": "16:00",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := dataOf(t, body)
		assert.Equal(t, "rescheduled", data["status"])
		assert.Equal(t, "16:00", data["time_slot"])
		assert.Len(t, data["services"], 1)
	})

	t.Run("Should delete the appointment with its lines", func(t *testing.T) {
		rec, _ := h.do(http.MethodDelete, "/api/v1/admin/appointments/"+appt, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec, _ = h.do(http.MethodGet, "/api/v1/admin/appointments/"+appt, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInventory(t *testing.T) {
	h := newHarness(t, nil)
	item := h.create("/api/v1/admin/inventory", map[string]any{
		"name": "Shampoo", "category": "hair", "quantity": 5, "unit": "bottle", "threshold": 3,
	})
	h.create("/api/v1/admin/inventory", map[string]any{
		"name": "Nail Files", "category": "nails", "quantity": 40, "unit": "pcs", "threshold": 10,
	})

	t.Run("Should refuse using more than is on hand", func(t *testing.T) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/inventory/"+item+"/use", map[string]any{"amount": 6})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "amount", body["field"])
		assert.Equal(t, "insufficient stock: only 5 bottle left", body["message"])
	})

	t.Run("Should move stock and record it", func(t *testing.T) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/inventory/"+item+"/use", map[string]any{"amount": 3, "notes": "color job"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.EqualValues(t, 2, dataOf(t, body)["quantity"])

		_, body = h.do(http.MethodGet, "/api/v1/admin/inventory?low_stock=true", nil)
		rows := listOf(t, body)
		require.Len(t, rows, 1)
		assert.Equal(t, "Shampoo", rows[0].(map[string]any)["name"])

		rec, body = h.do(http.MethodPost, "/api/v1/admin/inventory/"+item+"/restock", map[string]any{"amount": 10})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 12, dataOf(t, body)["quantity"])

		_, body = h.do(http.MethodGet, "/api/v1/admin/inventory/"+item+"/transactions", nil)
		txns := listOf(t, body)
		// opening stock, use, restock
		require.Len(t, txns, 3)
		assert.Equal(t, "restock", txns[0].(map[string]any)["type"])
	})

	t.Run("Should validate amounts and units", func(t *testing.T) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/inventory/"+item+"/restock", map[string]any{"amount": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "amount", body["field"])

		rec, body = h.do(http.MethodPost, "/api/v1/admin/inventory", map[string]any{
			"name": "Gel", "category": "hair", "quantity": 1, "unit": "litre",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "unit", body["field"])
	})

	t.Run("Should answer 404 for stock moves on a missing item", func(t *testing.T) {
		rec, _ := h.do(http.MethodPost, "/api/v1/admin/inventory/missing/restock", map[string]any{"amount": 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAttendance(t *testing.T) {
	h := newHarness(t, nil)
	staff := h.create("/api/v1/admin/staff", staffPayload("Asha Rao", "9876543210", "123412341234"))

	mark := func(action, at string) (int, map[string]any) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/attendance", map[string]any{
			"staff_id": staff, "action": action, "at": at,
		})
		return rec.Code, body
	}

	t.Run("Should check in once and out after", func(t *testing.T) {
		code, body := mark("checkIn", "2026-10-12T09:00:00Z")
		require.Equal(t, http.StatusCreated, code, body)
		assert.Equal(t, "present", dataOf(t, body)["status"])
		assert.Equal(t, "Asha Rao", dataOf(t, body)["staff_name"])

		code, body = mark("checkIn", "2026-10-12T09:05:00Z")
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "already checked in", body["message"])

		code, body = mark("checkOut", "2026-10-12T08:00:00Z")
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = mark("checkOut", "2026-10-12T17:30:00Z")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("Should refuse a check-out without a check-in", func(t *testing.T) {
		code, body := mark("checkOut", "2026-10-13T17:00:00Z")
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "not checked in", body["message"])
	})

	t.Run("Should record leave and absence", func(t *testing.T) {
		code, _ := mark("leave", "2026-10-14T08:00:00Z")
		assert.Equal(t, http.StatusCreated, code)
		code, _ = mark("absent", "2026-10-15T08:00:00Z")
		assert.Equal(t, http.StatusCreated, code)
	})

	t.Run("Should close holidays to marking", func(t *testing.T) {
		rec, _ := h.do(http.MethodPost, "/api/v1/admin/attendance/holiday", map[string]any{"date": "2026-10-16", "notes": "Festival"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		rec, body := h.do(http.MethodPost, "/api/v1/admin/attendance/holiday", map[string]any{"date": "2026-10-16"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "date", body["field"])

		code, body := mark("checkIn", "2026-10-16T09:00:00Z")
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "date", body["field"])
	})

	t.Run("Should summarize a date range", func(t *testing.T) {
		rec, body := h.do(http.MethodGet, "/api/v1/admin/staff/"+staff+"/attendance/summary?from=2026-10-12&to=2026-10-18", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		sum := dataOf(t, body)
		assert.EqualValues(t, 1, sum["present"])
		assert.EqualValues(t, 1, sum["absent"])
		assert.EqualValues(t, 1, sum["leave"])
		assert.EqualValues(t, 1, sum["holidays"])
		assert.InDelta(t, 8.5, sum["hours_worked"], 0.001)
	})

	t.Run("Should list records in a range with staff names", func(t *testing.T) {
		_, body := h.do(http.MethodGet, "/api/v1/admin/attendance?start=2026-10-12&end=2026-10-14&all=true", nil)
		rows := listOf(t, body)
		require.Len(t, rows, 2)
		assert.Equal(t, "Asha Rao", rows[0].(map[string]any)["staff_name"])
		// newest day first
		assert.Equal(t, "leave", rows[0].(map[string]any)["status"])
	})

	t.Run("Should remove a holiday once", func(t *testing.T) {
		rec, _ := h.do(http.MethodDelete, "/api/v1/admin/attendance/holiday?date=2026-10-16", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec, _ = h.do(http.MethodDelete, "/api/v1/admin/attendance/holiday?date=2026-10-16", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should store a complete record without an action", func(t *testing.T) {
		rec, body := h.do(http.MethodPost, "/api/v1/admin/attendance", map[string]any{
			"staff_id": staff, "date": "2026-10-17",
			"check_in": "2026-10-17T10:00:00Z", "check_out": "2026-10-17T12:00:00Z",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		id := dataOf(t, body)["id"].(string)
		assert.Equal(t, "present", dataOf(t, body)["status"])

		rec, _ = h.do(http.MethodPost, "/api/v1/admin/attendance", map[string]any{"staff_id": staff, "date": "2026-10-17"})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec, _ = h.do(http.MethodDelete, "/api/v1/admin/attendance/"+id, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
