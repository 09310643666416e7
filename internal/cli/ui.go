package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zaqqye/salon_backoffice/internal/listview"
)

var (
	colorPrimary = lipgloss.Color("69")
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
	colorMuted   = lipgloss.Color("245")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarning)
)

var kindStyles = map[listview.Kind]lipgloss.Style{
	listview.KindSuccess: lipgloss.NewStyle().Foreground(colorSuccess),
	listview.KindError:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
	listview.KindWarning: lipgloss.NewStyle().Foreground(colorWarning),
	listview.KindInfo:    lipgloss.NewStyle().Foreground(colorPrimary),
}

var kindIcons = map[listview.Kind]string{
	listview.KindSuccess: "✓",
	listview.KindError:   "✗",
	listview.KindWarning: "!",
	listview.KindInfo:    "•",
}

// notifier prints controller notifications as one styled line each. Errors
// are skipped since the failing command returns them to Execute.
func notifier(w io.Writer) listview.Notifier {
	return listview.NotifierFunc(func(kind listview.Kind, message string) {
		if kind == listview.KindError {
			return
		}
		style, ok := kindStyles[kind]
		if !ok {
			style = lipgloss.NewStyle()
		}
		fmt.Fprintln(w, style.Render(kindIcons[kind]+" "+message))
	})
}

// confirmer asks on the terminal, or answers yes without asking when
// assumeYes is set.
func confirmer(assumeYes bool) listview.Confirmer {
	return listview.ConfirmerFunc(func(ctx context.Context, message string) bool {
		if assumeYes {
			return true
		}
		ok := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		))
		if err := form.RunWithContext(ctx); err != nil {
			return false
		}
		return ok
	})
}

// renderTable draws rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func pageFooter[T any](p listview.Page[T]) string {
	if p.TotalItems == 0 {
		return mutedStyle.Render(p.Summary())
	}
	return mutedStyle.Render(fmt.Sprintf("%s · page %d of %d", p.Summary(), p.Number, p.TotalPages))
}
