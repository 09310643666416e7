// Package cli implements salonctl, the operator command line for the salon
// back office. Every list command drives a listview controller against the
// REST API, so filtering, sorting and paging behave as they do on screen.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zaqqye/salon_backoffice/internal/apiclient"
	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/config"
	"github.com/zaqqye/salon_backoffice/internal/listview"
	"github.com/zaqqye/salon_backoffice/internal/logger"
)

// app carries what every subcommand needs once the root has initialized.
type app struct {
	out    io.Writer
	errOut io.Writer

	cfg    *config.ClientConfig
	log    logger.Logger
	tokens *apiclient.FileToken
	client *apiclient.Client

	apiURL    string
	logLevel  string
	logJSON   bool
	assumeYes bool
}

// NewRootCommand builds the salonctl command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	cmd := &cobra.Command{
		Use:   "salonctl",
		Short: "Manage the salon back office from the terminal",
		Long: `salonctl lists and edits staff, services, combos, appointments,
inventory and attendance through the salon REST API.

Sign in once with "salonctl login"; the token is kept for later runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL (default $SALON_API_URL)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error, disabled")
	flags.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	flags.BoolVarP(&a.assumeYes, "yes", "y", false, "Answer yes to every confirmation")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		staffCommand(a),
		servicesCommand(a),
		combosCommand(a),
		appointmentsCommand(a),
		inventoryCommand(a),
		attendanceCommand(a),
		newWatchCmd(a),
		newBrowseCmd(a),
	)
	return cmd
}

// Execute runs salonctl against the process streams and returns the exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, kindStyles[listview.KindError].Render("Error: "+describe(err)))
		if apierr.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, mutedStyle.Render(`run "salonctl login" to sign in`))
		}
		return 1
	}
	return 0
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
	a.assumeYes = a.assumeYes || cfg.AssumeYes
	a.cfg = cfg

	a.log = logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		Output:     a.errOut,
		JSON:       cfg.LogJSON,
		TimeFormat: time.Kitchen,
		Prefix:     "salonctl",
	})
	a.tokens = &apiclient.FileToken{Path: cfg.TokenPath()}
	a.client, err = apiclient.New(apiclient.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
		Tokens:  a.tokens,
		Logger:  a.log,
	})
	if err != nil {
		return errors.Wrap(err, "configure API client")
	}
	a.log.Debug("client ready", "api", cfg.APIURL, "token_file", cfg.TokenPath())
	return nil
}

// deps wires a controller to the terminal.
func (a *app) deps() listview.Deps {
	return listview.Deps{
		Notifier:  notifier(a.errOut),
		Confirmer: confirmer(a.assumeYes),
		Logger:    a.log,
	}
}

// describe turns an error into the line shown to the operator.
func describe(err error) string {
	var se *apierr.ServerError
	if errors.As(err, &se) && se.Field != "" {
		return fmt.Sprintf("%s (%s)", se.Message, se.Field)
	}
	return apierr.UserMessage(err, err.Error())
}
