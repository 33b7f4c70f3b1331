package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastkit/internal/intake"
)

var runOpts struct {
	headless  bool
	stdin     bool
	spoolPath string
	fromStart bool
	dbus      bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a toast instance",
	Long: `Run a toast instance that displays requests as they arrive.

Requests are JSON objects, one per line:

  {"op":"show","heading":"Saved","message":"All changes saved.","icon":"success"}
  {"op":"loading","id":"logOutToast","heading":"Logging out..."}
  {"op":"update","id":"logOutToast","outcome":"success","message":"Bye!"}
  {"op":"dismiss","id":"logOutToast"}
  {"op":"configure","config":{"toasts":{"default_duration":"5s"}}}

The spool file is always tailed. With --dbus the instance also claims
org.freedesktop.Notifications on the session bus and shows desktop
notifications as toasts. With --stdin (headless only) requests are
also read from standard input, and the instance exits once input ends and
every toast has been removed.

Key bindings:
  click       Dismiss a toast
  d           Dismiss the newest toast
  D           Clear all toasts
  ?           Show help
  q           Quit`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runOpts.headless, "headless", false,
		"Run without a terminal UI")
	cmd.Flags().BoolVar(&runOpts.stdin, "stdin", false,
		"Read requests from standard input (requires --headless)")
	cmd.Flags().StringVar(&runOpts.spoolPath, "spool", "",
		"Path to the request spool (default: $XDG_RUNTIME_DIR/toastkit/requests.jsonl)")
	cmd.Flags().BoolVar(&runOpts.fromStart, "from-start", false,
		"Replay requests already in the spool")
	cmd.Flags().BoolVar(&runOpts.dbus, "dbus", false,
		"Serve org.freedesktop.Notifications on the session bus")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runOpts.stdin && !runOpts.headless {
		return errors.New("--stdin requires --headless")
	}
	headless := runOpts.headless || !isTerminal(os.Stdout)

	ctx, cancel := signalContext()
	defer cancel()

	inst, err := startInstance(ctx, headless)
	if err != nil {
		return err
	}
	defer inst.stop()

	cfg := inst.app.Config()
	dispatcher := intake.NewDispatcher(inst.app, cfg.Intake.Rate, cfg.Intake.Burst, logger)

	spoolPath := runOpts.spoolPath
	if spoolPath == "" {
		spoolPath = intake.SpoolPath()
	}
	tail := intake.NewTail(spoolPath, dispatcher, runOpts.fromStart, logger)
	go func() {
		if err := tail.Run(ctx); err != nil {
			logger.Error("spool tail failed", "path", spoolPath, "error", err)
		}
	}()

	if runOpts.dbus {
		server := intake.NewNotificationServer(dispatcher, logger)
		go func() {
			if err := server.Run(ctx); err != nil {
				logger.Error("D-Bus notification server failed", "error", err)
			}
		}()
	}

	if !headless {
		return inst.runUI(ctx)
	}

	if runOpts.stdin {
		n, err := dispatcher.Serve(ctx, os.Stdin, "stdin")
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("failed to read requests: %w", err)
		}
		logger.Debug("stdin closed", "requests", n)
		if err := inst.waitIdle(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	<-ctx.Done()
	return nil
}
