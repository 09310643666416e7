package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zaqqye/salon_backoffice/internal/apiclient"
	"github.com/zaqqye/salon_backoffice/internal/listview"
)

type column[T any] struct {
	title string
	value func(T) string
}

// entity turns one screen configuration into a command group with list,
// get, create, update, delete and, where the screen has one, toggle.
type entity[T any] struct {
	use      string
	aliases  []string
	short    string
	resource func(*apiclient.Client) *apiclient.Resource[T]
	screen   func(listview.Source[T]) listview.Config[T]
	columns  []column[T]
}

func (e *entity[T]) command(a *app, extra ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:     e.use,
		Aliases: e.aliases,
		Short:   e.short,
	}
	cmd.AddCommand(
		e.listCmd(a),
		e.getCmd(a),
		e.createCmd(a),
		e.updateCmd(a),
		e.deleteCmd(a),
	)
	if e.screen(nil).Toggle != nil {
		cmd.AddCommand(e.toggleCmd(a))
	}
	cmd.AddCommand(extra...)
	return cmd
}

func (e *entity[T]) controller(a *app, remote map[string]string) (*listview.Controller[T], error) {
	cfg := e.screen(e.resource(a.client))
	cfg.PageSize = a.cfg.PageSize
	if len(remote) > 0 {
		merged := maps.Clone(cfg.DefaultFilter.Remote)
		if merged == nil {
			merged = map[string]string{}
		}
		maps.Copy(merged, remote)
		cfg.DefaultFilter.Remote = merged
	}
	return listview.New(cfg, a.deps())
}

func (e *entity[T]) render(w io.Writer, rows []T) {
	headers := make([]string, len(e.columns))
	for i, c := range e.columns {
		headers[i] = c.title
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(e.columns))
		for i, c := range e.columns {
			line[i] = c.value(r)
		}
		cells = append(cells, line)
	}
	fmt.Fprintln(w, renderTable(headers, cells))
}

type listOptions struct {
	search   string
	filters  map[string]string
	flags    []string
	remote   map[string]string
	sort     string
	desc     bool
	page     int
	pageSize int
	all      bool
	asJSON   bool
}

func (e *entity[T]) listCmd(a *app) *cobra.Command {
	o := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + e.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ctrl, err := e.controller(a, o.remote)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}

			cfg := ctrl.Config()
			var cmds []listview.Command
			if o.search != "" {
				cmds = append(cmds, listview.SetSearch{Term: o.search})
			}
			for _, name := range slices.Sorted(maps.Keys(o.filters)) {
				if _, ok := cfg.Categories[name]; !ok {
					return unknownChoice("filter", name, slices.Collect(maps.Keys(cfg.Categories)))
				}
				cmds = append(cmds, listview.SetCategory{Name: name, Value: o.filters[name]})
			}
			for _, name := range o.flags {
				if _, ok := cfg.Flags[name]; !ok {
					return unknownChoice("flag", name, slices.Collect(maps.Keys(cfg.Flags)))
				}
				cmds = append(cmds, listview.SetFlag{Name: name, On: true})
			}
			if o.pageSize > 0 {
				cmds = append(cmds, listview.SetPageSize{Size: o.pageSize})
			}
			for _, c := range cmds {
				if err := ctrl.Dispatch(ctx, c); err != nil {
					return err
				}
			}

			key := o.sort
			if key == "" && o.desc {
				key = ctrl.State().Sort.Key
			}
			if key != "" {
				if _, ok := cfg.SortKeys[key]; !ok {
					return unknownChoice("sort key", key, slices.Collect(maps.Keys(cfg.SortKeys)))
				}
				want := listview.SortState{Key: key}
				if o.desc {
					want.Direction = listview.Descending
				}
				// SortBy toggles, so at most two steps reach any direction.
				for i := 0; i < 2 && ctrl.State().Sort != want; i++ {
					if err := ctrl.Dispatch(ctx, listview.SortBy{Key: key}); err != nil {
						return err
					}
				}
			}
			if o.page > 1 {
				if err := ctrl.Dispatch(ctx, listview.GoToPage{Page: o.page}); err != nil {
					return err
				}
			}

			view := ctrl.View()
			rows := view.Page.Items
			if o.all {
				rows = view.Rows
			}
			if o.asJSON {
				return writeJSON(a.out, rows)
			}
			e.render(a.out, rows)
			if !o.all {
				fmt.Fprintln(a.out, pageFooter(view.Page))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.search, "search", "s", "", "Case-insensitive search across the searchable columns")
	f.StringToStringVar(&o.filters, "filter", nil, "Category filter as name=value (repeatable)")
	f.StringSliceVar(&o.flags, "only", nil, "Enable a boolean filter such as low_stock")
	f.StringToStringVar(&o.remote, "remote", nil, "Server-side filter as name=value, e.g. date=2026-10-16")
	f.StringVar(&o.sort, "sort", "", "Sort key")
	f.BoolVar(&o.desc, "desc", false, "Sort descending")
	f.IntVarP(&o.page, "page", "p", 1, "Page number")
	f.IntVar(&o.pageSize, "page-size", 0, "Rows per page (default $SALON_PAGE_SIZE)")
	f.BoolVar(&o.all, "all", false, "Print every matching row instead of one page")
	f.BoolVar(&o.asJSON, "json", false, "Print rows as JSON")
	return cmd
}

func (e *entity[T]) getCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := e.resource(a.client).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, rec)
			}
			e.render(a.out, []T{rec})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}

type inputOptions struct {
	inline string
	file   string
}

func (o *inputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.inline, "data", "", "Record as a JSON object")
	cmd.Flags().StringVarP(&o.file, "file", "f", "", `Read the JSON object from a file, or "-" for stdin`)
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func (o *inputOptions) read(cmd *cobra.Command) ([]byte, error) {
	if o.inline != "" {
		return []byte(o.inline), nil
	}
	if o.file == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		return raw, errors.Wrap(err, "read stdin")
	}
	raw, err := os.ReadFile(o.file)
	return raw, errors.Wrapf(err, "read %s", o.file)
}

func (e *entity[T]) createCmd(a *app) *cobra.Command {
	in := &inputOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record from JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := in.read(cmd)
			if err != nil {
				return err
			}
			rec, err := e.resource(a.client).Decode(raw)
			if err != nil {
				return errors.Wrap(err, "parse record")
			}
			ctrl, err := e.controller(a, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			saved, err := ctrl.Create(cmd.Context(), rec)
			if err != nil {
				return err
			}
			e.render(a.out, []T{saved})
			return nil
		},
	}
	in.bind(cmd)
	return cmd
}

func (e *entity[T]) updateCmd(a *app) *cobra.Command {
	in := &inputOptions{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a record",
		Long:  "Fields in the JSON object replace those of the stored record; the rest are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patch, err := in.read(cmd)
			if err != nil {
				return err
			}
			res := e.resource(a.client)
			current, err := res.Get(ctx, args[0])
			if err != nil {
				return err
			}
			merged, err := mergeJSON(current, patch, args[0])
			if err != nil {
				return err
			}
			rec, err := res.Decode(merged)
			if err != nil {
				return errors.Wrap(err, "parse record")
			}
			ctrl, err := e.controller(a, nil)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			saved, err := ctrl.Update(ctx, rec)
			if err != nil {
				return err
			}
			e.render(a.out, []T{saved})
			return nil
		},
	}
	in.bind(cmd)
	return cmd
}

// loaded returns a controller holding the current collection, which delete
// and toggle need to find the record by id.
func (e *entity[T]) loaded(cmd *cobra.Command, a *app) (*listview.Controller[T], error) {
	ctrl, err := e.controller(a, nil)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Refresh(cmd.Context()); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

func (e *entity[T]) deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a record after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := e.loaded(cmd, a)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			err = ctrl.Delete(cmd.Context(), args[0])
			if errors.Is(err, listview.ErrCanceled) {
				fmt.Fprintln(a.errOut, mutedStyle.Render("nothing deleted"))
				return nil
			}
			return err
		},
	}
}

func (e *entity[T]) toggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle the status of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := e.loaded(cmd, a)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			saved, err := ctrl.ToggleStatus(cmd.Context(), args[0])
			if errors.Is(err, listview.ErrCanceled) {
				fmt.Fprintln(a.errOut, mutedStyle.Render("status unchanged"))
				return nil
			}
			if err != nil {
				return err
			}
			e.render(a.out, []T{saved})
			return nil
		},
	}
}

// mergeJSON overlays the fields of patch onto the JSON form of current.
// The id always stays that of the stored record.
func mergeJSON(current any, patch []byte, id string) ([]byte, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return nil, errors.Wrap(err, "encode stored record")
	}
	doc := map[string]any{}
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, errors.Wrap(err, "decode stored record")
	}
	over := map[string]any{}
	if err := json.Unmarshal(patch, &over); err != nil {
		return nil, errors.Wrap(err, "update must be a JSON object")
	}
	maps.Copy(doc, over)
	doc["id"] = id
	return json.Marshal(doc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func unknownChoice(what, got string, valid []string) error {
	slices.Sort(valid)
	if len(valid) == 0 {
		return errors.Errorf("unknown %s %q: this list has none", what, got)
	}
	return errors.Errorf("unknown %s %q, expected one of: %s", what, got, strings.Join(valid, ", "))
}
