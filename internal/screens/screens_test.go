package screens

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

// memSource serves a fixed slice and echoes mutations.
type memSource[T any] struct {
	items   []T
	toggles int
}

func (m *memSource[T]) List(context.Context, map[string]string) ([]T, error) { return m.items, nil }
func (m *memSource[T]) Create(_ context.Context, rec T) (T, error)            { return rec, nil }
func (m *memSource[T]) Update(_ context.Context, rec T) (T, error)            { return rec, nil }
func (m *memSource[T]) Delete(context.Context, string) error                  { return nil }
func (m *memSource[T]) ToggleStatus(_ context.Context, rec T) (T, error) {
	m.toggles++
	return rec, nil
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func validStaff() models.Staff {
	return models.Staff{
		Name:    "Asha Rao",
		Phone:   "9876543210",
		Aadhaar: "123412341234",
		Role:    "Stylist",
		Gender:  "Female",
		Salary:  decimal.NewFromInt(18000),
	}
}

func TestValidateStaff(t *testing.T) {
	t.Run("Should accept a complete record", func(t *testing.T) {
		assert.NoError(t, ValidateStaff(validStaff()))
	})

	t.Run("Should report every invalid field", func(t *testing.T) {
		s := validStaff()
		s.Name = "   "
		s.Phone = "98765"
		s.Aadhaar = "1234abcd1234"
		s.Role = "Janitor"
		s.Salary = decimal.NewFromInt(-1)
		fields := fieldsOf(t, ValidateStaff(s))
		assert.Equal(t, "is required", fields["name"])
		assert.Equal(t, "must be exactly 10 digits", fields["phone"])
		assert.Equal(t, "must contain only digits", fields["aadhaar"])
		assert.Equal(t, "must be one of: Barber, Stylist, Receptionist, Manager", fields["role"])
		assert.Equal(t, "must be at least 0", fields["salary"])
	})
}

func TestValidateService(t *testing.T) {
	err := ValidateService(models.Service{Name: "Haircut", Price: decimal.NewFromInt(200), Duration: 0, Category: "Hair", Gender: "male"})
	assert.Equal(t, map[string]string{"duration": "must be greater than 0"}, fieldsOf(t, err))

	err = ValidateService(models.Service{Name: "Haircut", Price: decimal.NewFromInt(200), Duration: 30, Category: "Hair"})
	assert.Equal(t, map[string]string{"gender": "is required"}, fieldsOf(t, err))
	assert.NoError(t, ValidateService(models.Service{Name: "Haircut", Price: decimal.Zero, Duration: 30, Category: "Hair", Gender: "unisex"}))
}

func TestValidateCombo(t *testing.T) {
	t.Run("Should require services and a bounded discount", func(t *testing.T) {
		fields := fieldsOf(t, ValidateCombo(models.Combo{Name: "Groom", Gender: "male", Discount: 120}))
		assert.Equal(t, "must have at least 1 entry", fields["services"])
		assert.Equal(t, "must be at most 100", fields["discount"])
	})

	t.Run("Should accept a valid combo", func(t *testing.T) {
		c := models.Combo{Name: "Groom", Gender: "female", Discount: 10, Items: []models.ComboItem{{ServiceID: "s1"}}}
		assert.NoError(t, ValidateCombo(c))
	})
}

func TestComboTotals(t *testing.T) {
	items := []models.ComboItem{
		{ServiceID: "b", Price: decimal.RequireFromString("199.99"), Duration: 45, Sequence: 2},
		{ServiceID: "a", Price: decimal.NewFromInt(100), Duration: 15, Sequence: 1},
	}
	tot := ComboTotals(items, 15)
	assert.Equal(t, "299.99", tot.Original.StringFixed(2))
	assert.Equal(t, "254.99", tot.Price.StringFixed(2))
	assert.Equal(t, "45.00", tot.Savings.StringFixed(2))
	assert.Equal(t, 60, tot.Duration)
	assert.Equal(t, "b", items[0].ServiceID, "input order is untouched")

	assert.True(t, ComboTotals(items, 150).Price.IsZero())
	assert.True(t, ComboTotals(nil, 10).Price.IsZero())
}

func TestValidateAppointment(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Should require a service or combo", func(t *testing.T) {
		a := models.Appointment{CustomerName: "Ravi", CustomerPhone: "9000000001", AppointmentDate: day, TimeSlot: "10:30"}
		assert.Equal(t, map[string]string{"services": "select at least one service or a combo"}, fieldsOf(t, ValidateAppointment(a)))

		combo := "c1"
		a.ComboID = &combo
		assert.NoError(t, ValidateAppointment(a))
	})

	t.Run("Should merge field errors with the missing services", func(t *testing.T) {
		fields := fieldsOf(t, ValidateAppointment(models.Appointment{TimeSlot: "25:00"}))
		assert.Equal(t, "is required", fields["customer_name"])
		assert.Equal(t, "is required", fields["appointment_date"])
		assert.Equal(t, "must be a time of day as HH:MM", fields["time_slot"])
		assert.Contains(t, fields, "services")
	})
}

func TestNextToggleStatus(t *testing.T) {
	next, err := NextToggleStatus(models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, next)

	next, err = NextToggleStatus(models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, next)

	for _, s := range []string{models.StatusCompleted, models.StatusCancelled, models.StatusRescheduled} {
		_, err := NextToggleStatus(s)
		assert.Contains(t, fieldsOf(t, err), "status", s)
	}
}

func TestComputeAppointmentStats(t *testing.T) {
	items := []models.Appointment{
		{Status: models.StatusCompleted, Total: decimal.NewFromInt(500)},
		{Status: models.StatusCompleted, Total: decimal.NewFromInt(250)},
		{Status: models.StatusPending, Total: decimal.NewFromInt(100)},
		{Status: models.StatusCancelled, Total: decimal.NewFromInt(900)},
	}
	st := ComputeAppointmentStats(items)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.ByStatus[models.StatusCompleted])
	assert.Equal(t, 0, st.ByStatus[models.StatusConfirmed])
	assert.True(t, st.Revenue.Equal(decimal.NewFromInt(750)))
	assert.True(t, st.Outstanding.Equal(decimal.NewFromInt(100)))
}

func TestValidateInventoryAndAttendance(t *testing.T) {
	fields := fieldsOf(t, ValidateInventoryItem(models.InventoryItem{Name: "Shampoo", Category: "hair", Quantity: -1, Unit: "litre"}))
	assert.Equal(t, "must be at least 0", fields["quantity"])
	assert.Equal(t, "must be one of: ml, g, pcs, bottle, box", fields["unit"])

	in := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	out := in.Add(-time.Hour)
	err := ValidateAttendance(models.Attendance{StaffID: "s1", Date: in, Status: "present", CheckIn: &in, CheckOut: &out})
	assert.Equal(t, map[string]string{"check_out": "must be after check-in"}, fieldsOf(t, err))
}

func TestScreens_WithController(t *testing.T) {
	ctx := context.Background()

	t.Run("Should list services newest first", func(t *testing.T) {
		now := time.Now()
		src := &memSource[models.Service]{items: []models.Service{
			{ID: "old", Name: "Old", CreatedAt: now.Add(-time.Hour)},
			{ID: "new", Name: "New", CreatedAt: now},
		}}
		ctrl, err := listview.New(Services(src), listview.Deps{})
		require.NoError(t, err)
		require.NoError(t, ctrl.Refresh(ctx))
		v := ctrl.View()
		assert.Equal(t, "new", v.Rows[0].ID)
	})

	t.Run("Should search services by category and gender and sort by gender", func(t *testing.T) {
		src := &memSource[models.Service]{items: []models.Service{
			{ID: "1", Name: "Haircut", Category: "Hair", Gender: "unisex"},
			{ID: "2", Name: "Beard Trim", Category: "Hair", Gender: "male"},
			{ID: "3", Name: "Facial", Category: "Skin", Gender: "female"},
		}}
		ctrl, err := listview.New(Services(src), listview.Deps{})
		require.NoError(t, err)
		require.NoError(t, ctrl.Refresh(ctx))

		require.NoError(t, ctrl.Dispatch(ctx, listview.SetSearch{Term: "skin"}))
		rows := ctrl.View().Rows
		require.Len(t, rows, 1)
		assert.Equal(t, "3", rows[0].ID)

		require.NoError(t, ctrl.Dispatch(ctx, listview.SetSearch{Term: "MALE"}))
		assert.Len(t, ctrl.View().Rows, 2)

		require.NoError(t, ctrl.Dispatch(ctx, listview.ClearFilters{}))
		require.NoError(t, ctrl.Dispatch(ctx, listview.SortBy{Key: "gender"}))
		var genders []string
		for _, s := range ctrl.View().Rows {
			genders = append(genders, s.Gender)
		}
		assert.Equal(t, []string{"female", "male", "unisex"}, genders)
	})

	t.Run("Should filter low stock inventory", func(t *testing.T) {
		src := &memSource[models.InventoryItem]{items: []models.InventoryItem{
			{ID: "1", Name: "Shampoo", Quantity: 2, Threshold: 5},
			{ID: "2", Name: "Gloves", Quantity: 50, Threshold: 10},
		}}
		ctrl, err := listview.New(Inventory(src), listview.Deps{})
		require.NoError(t, err)
		require.NoError(t, ctrl.Refresh(ctx))
		require.NoError(t, ctrl.Dispatch(ctx, listview.SetFlag{Name: "low_stock", On: true}))
		rows := ctrl.View().Rows
		require.Len(t, rows, 1)
		assert.Equal(t, "Shampoo", rows[0].Name)

		_, err = ctrl.ToggleStatus(ctx, "1")
		assert.ErrorIs(t, err, listview.ErrUnsupported)
	})

	t.Run("Should refuse to toggle a completed appointment", func(t *testing.T) {
		src := &memSource[models.Appointment]{items: []models.Appointment{
			{ID: "a1", CustomerName: "Ravi", Status: models.StatusCompleted},
			{ID: "a2", CustomerName: "Meena", Status: models.StatusPending},
		}}
		confirm := listview.ConfirmerFunc(func(context.Context, string) bool { return true })
		ctrl, err := listview.New(Appointments(src), listview.Deps{Confirmer: confirm})
		require.NoError(t, err)
		require.NoError(t, ctrl.Refresh(ctx))

		_, err = ctrl.ToggleStatus(ctx, "a1")
		var ve *apierr.ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Zero(t, src.toggles)

		got, err := ctrl.ToggleStatus(ctx, "a2")
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, got.Status)
		assert.Equal(t, 1, src.toggles)
	})

	t.Run("Should search staff by aadhaar and filter by status", func(t *testing.T) {
		a := validStaff()
		a.ID, a.Active = "1", true
		b := validStaff()
		b.ID, b.Name, b.Aadhaar = "2", "Kiran", "999988887777"
		src := &memSource[models.Staff]{items: []models.Staff{a, b}}
		ctrl, err := listview.New(Staff(src), listview.Deps{})
		require.NoError(t, err)
		require.NoError(t, ctrl.Refresh(ctx))

		require.NoError(t, ctrl.Dispatch(ctx, listview.SetSearch{Term: "99998888"}))
		assert.Len(t, ctrl.View().Rows, 1)
		require.NoError(t, ctrl.Dispatch(ctx, listview.SetCategory{Name: "status", Value: "active"}))
		assert.Empty(t, ctrl.View().Rows)

		saved, err := ctrl.ToggleStatus(ctx, "2")
		require.NoError(t, err)
		assert.True(t, saved.Active)
		assert.Len(t, ctrl.View().Rows, 1)
	})
}
