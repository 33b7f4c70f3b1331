package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastkit/internal/app"
	"github.com/jmylchreest/toastkit/internal/toast"
)

var demoOpts struct {
	headless bool
	delay    time.Duration
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play a scripted sequence of toasts",
	Long: `Play the toast sequences of a typical sign-in page: logging out,
creating an account that already exists and signing in with email and
password, followed by a plain informational toast.

Each loading toast is resolved after --delay.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoOpts.headless, "headless", false,
		"Print toast states instead of drawing them")
	demoCmd.Flags().DurationVar(&demoOpts.delay, "delay", 1500*time.Millisecond,
		"Time each loading toast spends loading")
}

// demoStep is one scripted operation.
type demoStep struct {
	id      string
	loading toast.LoadingSpec
	outcome toast.Outcome
	result  toast.ResultSpec
}

var demoScript = []demoStep{
	{
		id:      "logOutToast",
		loading: toast.LoadingSpec{Heading: "Logging out...", Message: "Please wait while we sign you out."},
		outcome: toast.OutcomeSuccess,
		result:  toast.ResultSpec{Heading: "Logged out", Message: "You have been logged out."},
	},
	{
		id:      "createAccountToast",
		loading: toast.LoadingSpec{Heading: "Creating account...", Message: "Setting up your account."},
		outcome: toast.OutcomeError,
		result:  toast.ResultSpec{Message: "A user with the same email already exists."},
	},
	{
		id:      "authEmailPasswordToast",
		loading: toast.LoadingSpec{Heading: "Signing in...", Message: "Checking your credentials."},
		outcome: toast.OutcomeSuccess,
		result:  toast.ResultSpec{Heading: "Welcome back!", Message: "You are now signed in."},
	},
}

func runDemo(cmd *cobra.Command, args []string) error {
	headless := demoOpts.headless || !isTerminal(os.Stdout)

	ctx, cancel := signalContext()
	defer cancel()

	inst, err := startInstance(ctx, headless)
	if err != nil {
		return err
	}
	defer inst.stop()

	if !headless {
		go func() {
			if err := playDemo(ctx, inst.app, demoOpts.delay, io.Discard); err != nil && ctx.Err() == nil {
				logger.Warn("demo failed", "error", err)
			}
		}()
		return inst.runUI(ctx)
	}

	start := time.Now()
	out := cmd.OutOrStdout()
	if err := playDemo(ctx, inst.app, demoOpts.delay, out); err != nil {
		return err
	}
	if err := inst.waitIdle(ctx); err != nil {
		return err
	}

	_, detached := inst.memory.Counts()
	fmt.Fprintf(out, "demo finished: %s toasts removed, started %s\n",
		humanize.Comma(int64(detached)), humanize.Time(start))
	return nil
}

// playDemo runs the demo script against a, writing a line per step to w.
func playDemo(ctx context.Context, a *app.App, delay time.Duration, w io.Writer) error {
	start := time.Now()
	logf := func(format string, args ...any) {
		elapsed := time.Since(start).Round(10 * time.Millisecond)
		fmt.Fprintf(w, "%8s  %s\n", elapsed, fmt.Sprintf(format, args...))
	}

	for _, step := range demoScript {
		if _, err := a.ShowLoading(ctx, step.id, step.loading); err != nil {
			return err
		}
		logf("%s: loading %q", step.id, step.loading.Heading)

		if err := sleep(ctx, delay); err != nil {
			return err
		}

		if err := a.UpdateLoading(ctx, step.id, step.outcome, step.result); err != nil {
			return err
		}
		logf("%s: %s %q", step.id, step.outcome, step.result.Message)
	}

	if _, err := a.Show(ctx, toast.Spec{
		Heading: "Heads up",
		Message: "Click a toast to dismiss it.",
		Icon:    toast.IconNone,
	}); err != nil {
		return err
	}
	logf("shown informational toast")
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
