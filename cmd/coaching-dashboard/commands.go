package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dowjanes/coaching-dashboard/pkg/board"
	"github.com/dowjanes/coaching-dashboard/pkg/calendar/ical"
	"github.com/dowjanes/coaching-dashboard/pkg/scheduler"
	"github.com/dowjanes/coaching-dashboard/pkg/server"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatICS  = "ics"
)

func dayCmd(flags *globalFlags) *cobra.Command {
	var (
		date    string
		format  string
		coach   string
		me      string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Build the enriched appointment list for one day",
		Long: `Fetch the day's coaching events from every visible calendar, enrich them
with CRM context and print the result.

Examples:
  coaching-dashboard day
  coaching-dashboard day --date 2025-03-10 --format json
  coaching-dashboard day --coach "My Calls" --me Teri
  coaching-dashboard day --format ics > today.ics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatText, formatJSON, formatICS:
			default:
				return fmt.Errorf("unknown format %q: use text, json or ics", format)
			}
			token, err := flags.requireToken()
			if err != nil {
				return err
			}

			app, err := NewApp(AppOptions{ConfigPath: flags.configPath, Debug: flags.debug, Publish: publish})
			if err != nil {
				return err
			}
			defer app.Close()

			day, err := board.ParseDate(date, app.board.Location())
			if err != nil {
				return err
			}

			snapshot, err := app.board.Refresh(cmd.Context(), day, token)
			if err != nil {
				return fmt.Errorf("%s: %w", board.FailureMessage, err)
			}
			snapshot.Appointments = board.Filter(snapshot.Appointments, coach, me)

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			case formatICS:
				return ical.Write(out, snapshot.Appointments, ical.ExportOptions{
					Name:     "Coaching " + snapshot.Date,
					Location: app.board.Location(),
				})
			default:
				return renderText(out, day, coach, snapshot.Appointments)
			}
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to load as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or ics")
	cmd.Flags().StringVar(&coach, "coach", board.ViewAll, `coach view: a roster name, "My Calls" or "All Coaches"`)
	cmd.Flags().StringVar(&me, "me", "", `your coach name, used by "My Calls"`)
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the result to NATS when configured")

	return cmd
}

func calendarsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List calendars visible to the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := flags.requireToken()
			if err != nil {
				return err
			}

			app, err := NewApp(AppOptions{ConfigPath: flags.configPath, Debug: flags.debug})
			if err != nil {
				return err
			}
			defer app.Close()

			provider, err := app.providers.NewProvider(cmd.Context(), token)
			if err != nil {
				return err
			}
			calendars, err := app.collector.ListCalendars(cmd.Context(), provider)
			if err != nil {
				return fmt.Errorf("failed to list calendars: %w", err)
			}

			return renderCalendars(cmd.OutOrStdout(), calendars)
		},
	}
}

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh today's board on the configured poll interval and publish each snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := flags.requireToken()
			if err != nil {
				return err
			}

			app, err := NewApp(AppOptions{ConfigPath: flags.configPath, Debug: flags.debug, Publish: true})
			if err != nil {
				return err
			}
			defer app.Close()
			if app.publisher == nil {
				app.logger.Warn("NATS URL not configured - snapshots will only be logged")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			poller := scheduler.New(&scheduler.Config{PollInterval: app.config.Watch.PollInterval}, app.board, token, app.logger)
			if err := poller.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			app.logger.Info("Received shutdown signal")
			return poller.Stop()
		},
	}
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board and contact lookup API over HTTP",
		Long: `Start the HTTP API.

Endpoints:
  GET  /healthz
  POST /api/refresh?date=YYYY-MM-DD   (Authorization: Bearer <google token>)
  GET  /api/appointments[?view=&me=]
  GET  /api/appointments.ics
  POST /api/contacts                  {"email": "..."}

With --watch the board is also refreshed on the poll interval using --token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(AppOptions{ConfigPath: flags.configPath, Debug: flags.debug, Publish: true})
			if err != nil {
				return err
			}
			defer app.Close()

			if addr == "" {
				addr = app.config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch {
				token, err := flags.requireToken()
				if err != nil {
					return err
				}
				poller := scheduler.New(&scheduler.Config{PollInterval: app.config.Watch.PollInterval}, app.board, token, app.logger)
				if err := poller.Start(ctx); err != nil {
					return err
				}
				defer poller.Stop()
			}

			srv := server.New(server.Options{
				Board:        app.board,
				Contacts:     app.contacts,
				Roster:       app.resolver.Roster(),
				CalendarName: "Coaching",
			}, app.logger)

			if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "also refresh today's board on the poll interval")

	return cmd
}
