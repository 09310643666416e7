package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/logger"
)

func newBrowseCmd(a *app) *cobra.Command {
	screens := []string{"staff", "services", "combos", "appointments", "inventory", "attendance"}
	return &cobra.Command{
		Use:       "browse <" + strings.Join(screens, "|") + ">",
		Short:     "Browse a list interactively",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: screens,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch args[0] {
			case "staff":
				return runBrowse(ctx, a, staffEntity)
			case "services":
				return runBrowse(ctx, a, serviceEntity)
			case "combos":
				return runBrowse(ctx, a, comboEntity)
			case "appointments":
				return runBrowse(ctx, a, appointmentEntity)
			case "inventory":
				return runBrowse(ctx, a, inventoryEntity)
			default:
				return runBrowse(ctx, a, attendanceEntity)
			}
		},
	}
}

type notice struct {
	kind listview.Kind
	text string
}

func runBrowse[T any](ctx context.Context, a *app, e *entity[T]) error {
	notices := make(chan notice, 16)
	cfg := e.screen(e.resource(a.client))
	cfg.PageSize = a.cfg.PageSize
	ctrl, err := listview.New(cfg, listview.Deps{
		Notifier: listview.NotifierFunc(func(kind listview.Kind, text string) {
			select {
			case notices <- notice{kind: kind, text: text}:
			default:
			}
		}),
		// The model asks before it calls Delete or ToggleStatus.
		Confirmer: listview.ConfirmerFunc(func(context.Context, string) bool { return true }),
		// Log lines would tear the alternate screen.
		Logger: logger.Nop(),
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	m := newBrowseModel(ctx, ctrl, e, notices)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type browseKeyMap struct {
	Search   key.Binding
	Clear    key.Binding
	Sort     key.Binding
	Reverse  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Refresh  key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Quit     key.Binding
}

func defaultBrowseKeyMap() browseKeyMap {
	bind := func(help, display string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(display, help))
	}
	return browseKeyMap{
		Search:   bind("search", "/", "/"),
		Clear:    bind("clear filters", "c", "c"),
		Sort:     bind("next sort key", "s", "s"),
		Reverse:  bind("reverse sort", "S", "S"),
		NextPage: bind("next page", "n/→", "n", "right"),
		PrevPage: bind("prev page", "p/←", "p", "left"),
		Refresh:  bind("refresh", "r", "r"),
		Toggle:   bind("toggle status", "t", "t"),
		Delete:   bind("delete", "d", "d"),
		Quit:     bind("quit", "q", "q", "ctrl+c"),
	}
}

func (k browseKeyMap) help() string {
	parts := make([]string, 0, 10)
	for _, b := range []key.Binding{k.Search, k.Clear, k.Sort, k.Reverse, k.NextPage, k.PrevPage, k.Refresh, k.Toggle, k.Delete, k.Quit} {
		if b.Enabled() {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

type browseMode int

const (
	modeNormal browseMode = iota
	modeSearch
	modeConfirm
)

type (
	fetchedMsg  struct{ err error }
	mutatedMsg  struct{ err error }
	noticeMsg   notice
	pendingKind int
)

const (
	pendingDelete pendingKind = iota
	pendingToggle
)

type browseModel[T any] struct {
	ctx     context.Context
	ctrl    *listview.Controller[T]
	ent     *entity[T]
	notices chan notice
	keys    browseKeyMap

	table  table.Model
	search textinput.Model
	mode   browseMode

	pending   pendingKind
	pendingID string
	prompt    string

	ids      []string
	sortKeys []string
	status   notice
}

func newBrowseModel[T any](ctx context.Context, ctrl *listview.Controller[T], e *entity[T], notices chan notice) *browseModel[T] {
	cols := make([]table.Column, len(e.columns))
	for i, c := range e.columns {
		cols[i] = table.Column{Title: c.title, Width: lipgloss.Width(c.title)}
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(ctrl.Config().PageSize+1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(colorPrimary)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(colorPrimary).Bold(true)
	t.SetStyles(styles)

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search"

	keys := defaultBrowseKeyMap()
	keys.Toggle.SetEnabled(ctrl.Config().Toggle != nil)

	return &browseModel[T]{
		ctx:      ctx,
		ctrl:     ctrl,
		ent:      e,
		notices:  notices,
		keys:     keys,
		table:    t,
		search:   in,
		sortKeys: slices.Sorted(maps.Keys(ctrl.Config().SortKeys)),
	}
}

func (m *browseModel[T]) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.waitNotice())
}

func (m *browseModel[T]) fetch() tea.Cmd {
	return func() tea.Msg {
		return fetchedMsg{err: m.ctrl.Refresh(m.ctx)}
	}
}

func (m *browseModel[T]) waitNotice() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-m.notices:
			return noticeMsg(n)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *browseModel[T]) mutate(kind pendingKind, id string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if kind == pendingDelete {
			err = m.ctrl.Delete(m.ctx, id)
		} else {
			_, err = m.ctrl.ToggleStatus(m.ctx, id)
		}
		return mutatedMsg{err: err}
	}
}

// dispatch applies a local command; those never refetch, so it is
// synchronous.
func (m *browseModel[T]) dispatch(cmd listview.Command) tea.Cmd {
	if err := m.ctrl.Dispatch(m.ctx, cmd); err != nil {
		m.status = notice{kind: listview.KindError, text: describe(err)}
	}
	m.sync()
	return nil
}

func (m *browseModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(3, min(m.ctrl.Config().PageSize+1, msg.Height-8)))
		return m, nil
	case fetchedMsg:
		if msg.err != nil && !errors.Is(msg.err, listview.ErrStale) {
			m.status = notice{kind: listview.KindError, text: describe(msg.err)}
		}
		m.sync()
		return m, nil
	case mutatedMsg:
		if msg.err != nil && !notified(msg.err) {
			m.status = notice{kind: listview.KindError, text: describe(msg.err)}
		}
		m.sync()
		return m, nil
	case noticeMsg:
		m.status = notice(msg)
		return m, m.waitNotice()
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// notified reports whether the controller already showed err through the
// notifier.
func notified(err error) bool {
	var ve *apierr.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, listview.ErrBusy),
		errors.Is(err, listview.ErrUnsupported),
		errors.Is(err, listview.ErrCanceled),
		errors.Is(err, listview.ErrClosed):
		return false
	}
	return true
}

func (m *browseModel[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.search.Blur()
		m.mode = modeNormal
		if msg.String() == "esc" {
			m.search.SetValue("")
			return m, m.dispatch(listview.SetSearch{Term: ""})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.dispatch(listview.SetSearch{Term: m.search.Value()})
	return m, cmd
}

func (m *browseModel[T]) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	m.prompt = ""
	switch msg.String() {
	case "y", "Y":
		return m, m.mutate(m.pending, m.pendingID)
	default:
		m.status = notice{kind: listview.KindInfo, text: "canceled"}
		return m, nil
	}
}

func (m *browseModel[T]) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		m.search.SetValue("")
		return m, m.withRefetch(listview.ClearFilters{})
	case key.Matches(msg, m.keys.Sort):
		return m, m.dispatch(listview.SortBy{Key: m.nextSortKey()})
	case key.Matches(msg, m.keys.Reverse):
		return m, m.dispatch(listview.SortBy{Key: m.ctrl.State().Sort.Key})
	case key.Matches(msg, m.keys.NextPage):
		return m, m.dispatch(listview.NextPage{})
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.dispatch(listview.PrevPage{})
	case key.Matches(msg, m.keys.Refresh):
		m.status = notice{kind: listview.KindInfo, text: "refreshing"}
		return m, m.fetch()
	case key.Matches(msg, m.keys.Toggle):
		return m, m.ask(pendingToggle)
	case key.Matches(msg, m.keys.Delete):
		return m, m.ask(pendingDelete)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// withRefetch dispatches cmd off the update loop, since it may refetch.
func (m *browseModel[T]) withRefetch(c listview.Command) tea.Cmd {
	return func() tea.Msg {
		return fetchedMsg{err: m.ctrl.Dispatch(m.ctx, c)}
	}
}

func (m *browseModel[T]) nextSortKey() string {
	if len(m.sortKeys) == 0 {
		return ""
	}
	cur := m.ctrl.State().Sort.Key
	i := slices.Index(m.sortKeys, cur)
	return m.sortKeys[(i+1)%len(m.sortKeys)]
}

func (m *browseModel[T]) ask(kind pendingKind) tea.Cmd {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.ids) {
		return nil
	}
	id := m.ids[i]
	cfg := m.ctrl.Config()
	label := id
	if rec, ok := m.ctrl.Find(id); ok && cfg.Label != nil {
		label = cfg.Label(rec)
	}
	if kind == pendingToggle && !cfg.ConfirmToggle {
		return m.mutate(kind, id)
	}
	m.pending, m.pendingID = kind, id
	if kind == pendingDelete {
		m.prompt = fmt.Sprintf("Delete %s %q? This cannot be undone. [y/N]", cfg.Name, label)
	} else {
		m.prompt = fmt.Sprintf("Change the status of %s %q? [y/N]", cfg.Name, label)
	}
	m.mode = modeConfirm
	return nil
}

// sync rebuilds the table rows from the current page.
func (m *browseModel[T]) sync() {
	page := m.ctrl.View().Page
	cols := m.table.Columns()
	for i, c := range m.ent.columns {
		cols[i].Width = lipgloss.Width(c.title)
	}
	rows := make([]table.Row, 0, len(page.Items))
	m.ids = m.ids[:0]
	for _, rec := range page.Items {
		row := make(table.Row, len(m.ent.columns))
		for i, c := range m.ent.columns {
			row[i] = c.value(rec)
			cols[i].Width = min(32, max(cols[i].Width, lipgloss.Width(row[i])))
		}
		rows = append(rows, row)
		m.ids = append(m.ids, m.ctrl.Config().ID(rec))
	}
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m *browseModel[T]) View() string {
	var b strings.Builder
	st := m.ctrl.State()
	cfg := m.ctrl.Config()

	title := titleStyle.Render(strings.ToUpper(cfg.Plural[:1]) + cfg.Plural[1:])
	if st.Loading {
		title += mutedStyle.Render("  loading…")
	}
	b.WriteString(title + "\n")
	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString(m.table.View() + "\n")

	page := m.ctrl.View().Page
	sortLine := ""
	if st.Sort.Key != "" {
		sortLine = fmt.Sprintf(" · sorted by %s %s", st.Sort.Key, st.Sort.Direction)
	}
	b.WriteString(pageFooter(page) + mutedStyle.Render(sortLine) + "\n")

	switch {
	case m.prompt != "":
		b.WriteString(warnStyle.Render(m.prompt) + "\n")
	case m.status.text != "":
		style, ok := kindStyles[m.status.kind]
		if !ok {
			style = lipgloss.NewStyle()
		}
		b.WriteString(style.Render(kindIcons[m.status.kind]+" "+m.status.text) + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString(m.keys.help())
	return b.String()
}
