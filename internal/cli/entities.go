package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/zaqqye/salon_backoffice/internal/apiclient"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/screens"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(models.DateLayout)
}

func clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("15:04")
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

var staffEntity = &entity[models.Staff]{
	use:      "staff",
	short:    "Manage staff members",
	resource: (*apiclient.Client).Staff,
	screen:   screens.Staff,
	columns: []column[models.Staff]{
		{"ID", func(s models.Staff) string { return s.ID }},
		{"NAME", func(s models.Staff) string { return s.Name }},
		{"PHONE", func(s models.Staff) string { return s.Phone }},
		{"ROLE", func(s models.Staff) string { return s.Role }},
		{"SALARY", func(s models.Staff) string { return money(s.Salary) }},
		{"STATUS", func(s models.Staff) string { return activeLabel(s.Active) }},
	},
}

func staffCommand(a *app) *cobra.Command {
	return staffEntity.command(a)
}

var serviceEntity = &entity[models.Service]{
	use:      "services",
	aliases:  []string{"service"},
	short:    "Manage the service menu",
	resource: (*apiclient.Client).Services,
	screen:   screens.Services,
	columns: []column[models.Service]{
		{"ID", func(s models.Service) string { return s.ID }},
		{"NAME", func(s models.Service) string { return s.Name }},
		{"CATEGORY", func(s models.Service) string { return s.Category }},
		{"PRICE", func(s models.Service) string { return money(s.Price) }},
		{"MINUTES", func(s models.Service) string { return strconv.Itoa(s.Duration) }},
		{"STATUS", func(s models.Service) string { return activeLabel(s.Active) }},
	},
}

func servicesCommand(a *app) *cobra.Command {
	return serviceEntity.command(a)
}

var comboEntity = &entity[models.Combo]{
	use:      "combos",
	aliases:  []string{"combo"},
	short:    "Manage service combos",
	resource: (*apiclient.Client).Combos,
	screen:   screens.Combos,
	columns: []column[models.Combo]{
		{"ID", func(c models.Combo) string { return c.ID }},
		{"NAME", func(c models.Combo) string { return c.Name }},
		{"SERVICES", func(c models.Combo) string {
			names := make([]string, len(c.Items))
			for i, it := range c.Items {
				names[i] = it.Name
			}
			return strings.Join(names, ", ")
		}},
		{"DISCOUNT", func(c models.Combo) string { return fmt.Sprintf("%d%%", c.Discount) }},
		{"PRICE", func(c models.Combo) string { return money(c.TotalPrice) }},
		{"MINUTES", func(c models.Combo) string { return strconv.Itoa(c.TotalDuration) }},
		{"STATUS", func(c models.Combo) string { return activeLabel(c.Active) }},
	},
}

func combosCommand(a *app) *cobra.Command {
	return comboEntity.command(a)
}

var appointmentEntity = &entity[models.Appointment]{
	use:     "appointments",
	aliases: []string{"appt"},
	short:   "Manage appointments",
	resource: func(c *apiclient.Client) *apiclient.Resource[models.Appointment] {
		return c.Appointments().Resource
	},
	screen: screens.Appointments,
	columns: []column[models.Appointment]{
		{"ID", func(ap models.Appointment) string { return ap.ID }},
		{"CUSTOMER", func(ap models.Appointment) string { return ap.CustomerName }},
		{"PHONE", func(ap models.Appointment) string { return ap.CustomerPhone }},
		{"WHEN", func(ap models.Appointment) string { return day(ap.AppointmentDate) + " " + ap.TimeSlot }},
		{"SERVICES", func(ap models.Appointment) string {
			names := make([]string, 0, len(ap.Services)+1)
			for _, s := range ap.Services {
				names = append(names, s.Name)
			}
			if ap.ComboName != "" {
				names = append(names, ap.ComboName+" (combo)")
			}
			return strings.Join(names, ", ")
		}},
		{"TOTAL", func(ap models.Appointment) string { return money(ap.Total) }},
		{"STATUS", func(ap models.Appointment) string { return ap.Status }},
	},
}

func appointmentsCommand(a *app) *cobra.Command {
	return appointmentEntity.command(a,
		newAppointmentTodayCmd(a),
		newAppointmentStatsCmd(a),
		newAppointmentStatusCmd(a),
		newRescheduleCmd(a),
	)
}

var inventoryEntity = &entity[models.InventoryItem]{
	use:     "inventory",
	aliases: []string{"inv"},
	short:   "Manage inventory and stock",
	resource: func(c *apiclient.Client) *apiclient.Resource[models.InventoryItem] {
		return c.Inventory().Resource
	},
	screen: screens.Inventory,
	columns: []column[models.InventoryItem]{
		{"ID", func(i models.InventoryItem) string { return i.ID }},
		{"NAME", func(i models.InventoryItem) string { return i.Name }},
		{"CATEGORY", func(i models.InventoryItem) string { return i.Category }},
		{"QTY", func(i models.InventoryItem) string { return fmt.Sprintf("%d %s", i.Quantity, i.Unit) }},
		{"THRESHOLD", func(i models.InventoryItem) string { return strconv.Itoa(i.Threshold) }},
		{"STOCK", func(i models.InventoryItem) string {
			if i.LowStock() {
				return warnStyle.Render("low")
			}
			return "ok"
		}},
	},
}

func inventoryCommand(a *app) *cobra.Command {
	return inventoryEntity.command(a,
		newStockCmd(a, "restock"),
		newStockCmd(a, "use"),
		newTransactionsCmd(a),
	)
}

var attendanceEntity = &entity[models.Attendance]{
	use:      "attendance",
	short:    "Manage staff attendance",
	resource: (*apiclient.Client).Attendance,
	screen:   screens.Attendance,
	columns: []column[models.Attendance]{
		{"ID", func(r models.Attendance) string { return r.ID }},
		{"STAFF", func(r models.Attendance) string { return r.StaffName }},
		{"DATE", func(r models.Attendance) string { return day(r.Date) }},
		{"IN", func(r models.Attendance) string { return clock(r.CheckIn) }},
		{"OUT", func(r models.Attendance) string { return clock(r.CheckOut) }},
		{"HOURS", func(r models.Attendance) string { return strconv.FormatFloat(r.HoursWorked(), 'f', 2, 64) }},
		{"STATUS", func(r models.Attendance) string { return r.Status }},
	},
}

func attendanceCommand(a *app) *cobra.Command {
	return attendanceEntity.command(a,
		newAttendanceTodayCmd(a),
		newMarkCmd(a),
		newHolidayCmd(a),
		newSummaryCmd(a),
	)
}
