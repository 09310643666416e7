package cli

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type memServices struct {
	mu      sync.Mutex
	items   []models.Service
	deleted []string
}

func (s *memServices) List(context.Context, map[string]string) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *memServices) Create(_ context.Context, rec models.Service) (models.Service, error) {
	return rec, nil
}

func (s *memServices) Update(_ context.Context, rec models.Service) (models.Service, error) {
	return rec, nil
}

func (s *memServices) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(it models.Service) bool { return it.ID == id })
	if i < 0 {
		return &apierr.NotFoundError{Resource: "service", ID: id}
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memServices) ToggleStatus(_ context.Context, rec models.Service) (models.Service, error) {
	return rec, nil
}

func newBrowseFixture(t *testing.T, n int) (*browseModel[models.Service], *listview.Controller[models.Service], *memServices) {
	t.Helper()
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	src := &memServices{}
	for i := 1; i <= n; i++ {
		src.items = append(src.items, models.Service{
			ID:        fmt.Sprintf("s%02d", i),
			Name:      fmt.Sprintf("Service %02d", i),
			Category:  "Hair",
			Gender:    "unisex",
			Duration:  30,
			Active:    true,
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		})
	}
	cfg := serviceEntity.screen(src)
	cfg.PageSize = 10
	ctrl, err := listview.New(cfg, listview.Deps{
		Confirmer: listview.ConfirmerFunc(func(context.Context, string) bool { return true }),
	})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	ctx := context.Background()
	m := newBrowseModel(ctx, ctrl, serviceEntity, make(chan notice, 16))
	require.NoError(t, ctrl.Refresh(ctx))
	m.Update(fetchedMsg{})
	return m, ctrl, src
}

func press(m tea.Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.Update(msg)
	}
	return cmd
}

func TestBrowseModel(t *testing.T) {
	t.Run("Should show the first page newest first", func(t *testing.T) {
		m, _, _ := newBrowseFixture(t, 25)
		require.Len(t, m.ids, 10)
		assert.Equal(t, "s25", m.ids[0])
		assert.Contains(t, m.View(), "showing 1–10 of 25")
	})

	t.Run("Should search as the operator types and keep the term on enter", func(t *testing.T) {
		m, ctrl, _ := newBrowseFixture(t, 25)

		press(m, "/")
		assert.Equal(t, modeSearch, m.mode)
		press(m, "2", "1")
		assert.Equal(t, "21", ctrl.State().Filter.Search)
		assert.Equal(t, []string{"s21"}, m.ids)

		press(m, "enter")
		assert.Equal(t, modeNormal, m.mode)
		assert.Equal(t, "21", ctrl.State().Filter.Search)
		assert.Equal(t, "21", m.search.Value())
	})

	t.Run("Should clear the search on escape", func(t *testing.T) {
		m, ctrl, _ := newBrowseFixture(t, 25)
		press(m, "/", "2")
		require.Len(t, m.ids, 8)

		press(m, "esc")
		assert.Equal(t, modeNormal, m.mode)
		assert.Empty(t, ctrl.State().Filter.Search)
		assert.Len(t, m.ids, 10)
	})

	t.Run("Should page forward and back within bounds", func(t *testing.T) {
		m, ctrl, _ := newBrowseFixture(t, 25)

		press(m, "n")
		assert.Equal(t, 2, ctrl.State().Page)
		assert.Equal(t, "s15", m.ids[0])

		press(m, "n", "n")
		assert.Equal(t, 3, ctrl.State().Page)
		assert.Len(t, m.ids, 5)
		assert.Contains(t, m.View(), "page 3 of 3")

		press(m, "p", "p", "p")
		assert.Equal(t, 1, ctrl.State().Page)
		assert.Equal(t, "s25", m.ids[0])
	})

	t.Run("Should ask before deleting and do nothing when declined", func(t *testing.T) {
		m, ctrl, src := newBrowseFixture(t, 3)

		assert.Nil(t, press(m, "d"))
		assert.Equal(t, modeConfirm, m.mode)
		assert.Contains(t, m.View(), `Delete service "Service 03"? This cannot be undone. [y/N]`)

		assert.Nil(t, press(m, "n"))
		assert.Equal(t, modeNormal, m.mode)
		assert.Empty(t, m.prompt)
		assert.Equal(t, "canceled", m.status.text)
		assert.Empty(t, src.deleted)
		_, ok := ctrl.Find("s03")
		assert.True(t, ok)
	})

	t.Run("Should delete the selected row once confirmed", func(t *testing.T) {
		m, ctrl, src := newBrowseFixture(t, 3)

		press(m, "d")
		cmd := press(m, "y")
		require.NotNil(t, cmd)
		m.Update(cmd())

		assert.Equal(t, []string{"s03"}, src.deleted)
		_, ok := ctrl.Find("s03")
		assert.False(t, ok)
		assert.Equal(t, []string{"s02", "s01"}, m.ids)
		assert.Equal(t, modeNormal, m.mode)
	})
}
