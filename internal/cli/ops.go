package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zaqqye/salon_backoffice/internal/apiclient"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/screens"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the access token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Email").Value(&email).
						Validate(func(s string) error {
							if !strings.Contains(s, "@") {
								return errors.New("enter an email address")
							}
							return nil
						}),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				))
				if err := form.RunWithContext(cmd.Context()); err != nil {
					return errors.Wrap(err, "read credentials")
				}
			}
			res, err := a.client.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			if err := a.tokens.Save(res.AccessToken); err != nil {
				return err
			}
			a.log.Debug("token saved", "path", a.tokens.Path, "expires_in", res.ExpiresIn)
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", titleStyle.Render(res.User.FullName), res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, renderTable(
				[]string{"NAME", "EMAIL", "ROLE"},
				[][]string{{u.FullName, u.Email, u.Role}},
			))
			return nil
		},
	}
}

func parseDay(flag, s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Errorf("%s must be a date as YYYY-MM-DD", flag)
	}
	return t, nil
}

func parseAmount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, errors.Errorf("amount must be a positive whole number, got %q", s)
	}
	return n, nil
}

func newAppointmentTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List today's appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.client.Appointments().Today(cmd.Context())
			if err != nil {
				return err
			}
			appointmentEntity.render(a.out, rows)
			return nil
		},
	}
}

func newAppointmentStatsCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count appointments by status and sum revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			remote := map[string]string{}
			if date != "" {
				if _, err := parseDay("--date", date); err != nil {
					return err
				}
				remote["date"] = date
			}
			rows, err := a.client.Appointments().List(cmd.Context(), remote)
			if err != nil {
				return err
			}
			st := screens.ComputeAppointmentStats(rows)
			lines := make([][]string, 0, len(models.AppointmentStatuses)+3)
			for _, s := range models.AppointmentStatuses {
				lines = append(lines, []string{s, strconv.Itoa(st.ByStatus[s])})
			}
			lines = append(lines,
				[]string{"total", strconv.Itoa(st.Total)},
				[]string{"revenue", money(st.Revenue)},
				[]string{"outstanding", money(st.Outstanding)},
			)
			fmt.Fprintln(a.out, renderTable([]string{"", "VALUE"}, lines))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Only appointments on this day (YYYY-MM-DD)")
	return cmd
}

func newAppointmentStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <status>",
		Short:     "Move an appointment to a status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: models.AppointmentStatuses,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := strings.ToLower(args[1])
			if !models.IsAppointmentStatus(status) {
				return unknownChoice("status", args[1], slices.Clone(models.AppointmentStatuses))
			}
			ap, err := a.client.Appointments().SetStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			appointmentEntity.render(a.out, []models.Appointment{ap})
			return nil
		},
	}
}

func newRescheduleCmd(a *app) *cobra.Command {
	var date, slot string
	cmd := &cobra.Command{
		Use:   "reschedule <id>",
		Short: "Move an appointment to another day and slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDay("--date", date)
			if err != nil {
				return err
			}
			ap, err := a.client.Appointments().Reschedule(cmd.Context(), args[0], d, slot)
			if err != nil {
				return err
			}
			appointmentEntity.render(a.out, []models.Appointment{ap})
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "New day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&slot, "slot", "", "New time slot (HH:MM)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

// newStockCmd builds "restock" or "use", which differ only in direction.
func newStockCmd(a *app, kind string) *cobra.Command {
	var notes, serviceID string
	short := "Add stock to an item"
	if kind == models.TxUse {
		short = "Take stock from an item"
	}
	cmd := &cobra.Command{
		Use:   kind + " <id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			inv := a.client.Inventory()
			var item models.InventoryItem
			if kind == models.TxUse {
				item, err = inv.Use(cmd.Context(), args[0], amount, serviceID, notes)
			} else {
				item, err = inv.Restock(cmd.Context(), args[0], amount, notes)
			}
			if err != nil {
				return err
			}
			inventoryEntity.render(a.out, []models.InventoryItem{item})
			if item.LowStock() {
				fmt.Fprintln(a.errOut, warnStyle.Render(fmt.Sprintf("! %s is below its threshold of %d", item.Name, item.Threshold)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Note stored with the transaction")
	if kind == models.TxUse {
		cmd.Flags().StringVar(&serviceID, "service", "", "Service the stock was used for")
	}
	return cmd
}

func newTransactionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <id>",
		Short: "Show the stock movements of an item, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, err := a.client.Inventory().Transactions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lines := make([][]string, 0, len(txns))
			for _, tx := range txns {
				amount := strconv.Itoa(tx.Amount)
				if tx.Type == models.TxUse {
					amount = "-" + amount
				} else {
					amount = "+" + amount
				}
				lines = append(lines, []string{tx.CreatedAt.Local().Format("2006-01-02 15:04"), tx.Type, amount, tx.Notes})
			}
			fmt.Fprintln(a.out, renderTable([]string{"WHEN", "TYPE", "AMOUNT", "NOTES"}, lines))
			return nil
		},
	}
}

func newAttendanceTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List today's attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.client.Attendance().Today(cmd.Context())
			if err != nil {
				return err
			}
			attendanceEntity.render(a.out, rows)
			return nil
		},
	}
}

var markActions = []string{apiclient.MarkCheckIn, apiclient.MarkCheckOut, apiclient.MarkAbsent, apiclient.MarkLeave}

// parseAt accepts a full timestamp or a local HH:MM on today.
func parseAt(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	hm, err := time.ParseInLocation("15:04", s, now.Location())
	if err != nil {
		return time.Time{}, errors.Errorf("--at must be RFC 3339 or HH:MM, got %q", s)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hm.Hour(), hm.Minute(), 0, 0, now.Location()), nil
}

func newMarkCmd(a *app) *cobra.Command {
	var at, date, notes string
	cmd := &cobra.Command{
		Use:       "mark <staff-id> <checkIn|checkOut|absent|leave>",
		Short:     "Record an attendance action for a staff member",
		Args:      cobra.ExactArgs(2),
		ValidArgs: markActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[1]
			if !slices.Contains(markActions, action) {
				return unknownChoice("action", action, slices.Clone(markActions))
			}
			when, err := parseAt(at, time.Now())
			if err != nil {
				return err
			}
			if date != "" {
				if _, err := parseDay("--date", date); err != nil {
					return err
				}
			}
			rec, err := a.client.MarkAttendance(cmd.Context(), apiclient.MarkRequest{
				StaffID: args[0],
				Action:  action,
				Date:    date,
				At:      when,
				Notes:   notes,
			})
			if err != nil {
				return err
			}
			attendanceEntity.render(a.out, []models.Attendance{rec})
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "When it happened: RFC 3339 or HH:MM today (default now)")
	cmd.Flags().StringVar(&date, "date", "", "Day of the record (default the day of --at)")
	cmd.Flags().StringVar(&notes, "notes", "", "Note stored with the record")
	return cmd
}

func newHolidayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Close or reopen a day for attendance",
	}

	var notes string
	add := &cobra.Command{
		Use:   "add <date>",
		Short: "Declare a holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDay("date", args[0])
			if err != nil {
				return err
			}
			h, err := a.client.AddHoliday(cmd.Context(), d, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Holiday declared on %s\n", day(h.Date))
			return nil
		},
	}
	add.Flags().StringVar(&notes, "notes", "", "Reason for the holiday")

	remove := &cobra.Command{
		Use:     "remove <date>",
		Aliases: []string{"rm"},
		Short:   "Reopen a holiday for attendance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDay("date", args[0])
			if err != nil {
				return err
			}
			if !confirmer(a.assumeYes).Confirm(cmd.Context(), fmt.Sprintf("Remove the holiday on %s?", args[0])) {
				fmt.Fprintln(a.errOut, mutedStyle.Render("holiday kept"))
				return nil
			}
			if err := a.client.RemoveHoliday(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Holiday on %s removed\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "summary <staff-id>",
		Short: "Summarize a staff member's attendance over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			end := time.Now()
			if to != "" {
				var err error
				if end, err = parseDay("--to", to); err != nil {
					return err
				}
			}
			start := end.AddDate(0, 0, -30)
			if from != "" {
				var err error
				if start, err = parseDay("--from", from); err != nil {
					return err
				}
			}
			sum, err := a.client.AttendanceSummary(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, titleStyle.Render(fmt.Sprintf("%s, %s to %s", sum.StaffName, sum.From, sum.To)))
			fmt.Fprintln(a.out, renderTable(
				[]string{"PRESENT", "ABSENT", "LEAVE", "HOLIDAYS", "HOURS"},
				[][]string{{
					strconv.Itoa(sum.Present),
					strconv.Itoa(sum.Absent),
					strconv.Itoa(sum.Leave),
					strconv.Itoa(sum.Holidays),
					strconv.FormatFloat(sum.HoursWorked, 'f', 2, 64),
				}},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (default 30 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (default today)")
	return cmd
}

var watchable = []string{
	models.ResourceStaff,
	models.ResourceServices,
	models.ResourceCombos,
	models.ResourceAppointments,
	models.ResourceInventory,
	models.ResourceAttendance,
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "watch [resource...]",
		Short:     "Print changes made by any operator as they happen",
		ValidArgs: watchable,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.errOut, mutedStyle.Render("watching for changes, press Ctrl+C to stop"))
			return a.client.Watch(cmd.Context(), func(ev models.ChangeEvent) {
				id := ev.ID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(a.out, "%s  %-12s %-8s %s\n",
					ev.At.Local().Format("15:04:05"), ev.Resource, ev.Action, id)
			}, args...)
		},
	}
}
