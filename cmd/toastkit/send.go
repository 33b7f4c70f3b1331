package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/intake"
)

var sendOpts struct {
	spoolPath string
	op        string
	id        string
	heading   string
	message   string
	icon      string
	iconPath  string
	duration  string
	outcome   string
	raw       string
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a request to a running instance",
	Long: `Append a request to the spool file tailed by 'toastkit run'.

Examples:
  toastkit send --heading Saved --message "All changes saved." --icon success
  toastkit send --op loading --id upload --heading "Uploading..."
  toastkit send --op update --id upload --outcome error --message "Disk full."
  toastkit send --op dismiss --id upload
  toastkit send --json '{"op":"configure","config":{"toasts":{"gap":4}}}'

Durations accept "5s", "1m" or integer milliseconds; 0 keeps the toast until
it is dismissed.`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendOpts.spoolPath, "spool", "",
		"Path to the request spool (default: $XDG_RUNTIME_DIR/toastkit/requests.jsonl)")
	sendCmd.Flags().StringVar(&sendOpts.op, "op", string(intake.OpShow),
		"Operation: show, loading, update, dismiss")
	sendCmd.Flags().StringVar(&sendOpts.id, "id", "", "Operation id")
	sendCmd.Flags().StringVar(&sendOpts.heading, "heading", "", "Toast heading")
	sendCmd.Flags().StringVar(&sendOpts.message, "message", "", "Toast message")
	sendCmd.Flags().StringVar(&sendOpts.icon, "icon", "", "Icon: none, loading, success, error")
	sendCmd.Flags().StringVar(&sendOpts.iconPath, "icon-path", "", "Icon path overriding the configured one")
	sendCmd.Flags().StringVar(&sendOpts.duration, "duration", "", "Display duration")
	sendCmd.Flags().StringVar(&sendOpts.outcome, "outcome", "", "Result of an update: success, error")
	sendCmd.Flags().StringVar(&sendOpts.raw, "json", "", "Send a raw JSON request instead of flags")
}

func runSend(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}

	path := sendOpts.spoolPath
	if path == "" {
		path = intake.SpoolPath()
	}
	if err := intake.Append(path, req); err != nil {
		return err
	}

	logger.Debug("request sent", "op", string(req.Op), "id", req.ID, "spool", path)
	return nil
}

func buildRequest() (intake.Request, error) {
	if sendOpts.raw != "" {
		return intake.Decode([]byte(sendOpts.raw))
	}

	req := intake.Request{
		Op:       intake.Op(sendOpts.op),
		ID:       sendOpts.id,
		Heading:  sendOpts.heading,
		Message:  sendOpts.message,
		Icon:     sendOpts.icon,
		IconPath: sendOpts.iconPath,
		Outcome:  sendOpts.outcome,
	}
	if sendOpts.duration != "" {
		var d config.Duration
		if err := d.UnmarshalText([]byte(sendOpts.duration)); err != nil {
			return intake.Request{}, err
		}
		req.Duration = &d
	}

	// Round-trip through the decoder so flags get the same validation as
	// spool lines.
	data, err := json.Marshal(req)
	if err != nil {
		return intake.Request{}, fmt.Errorf("failed to encode request: %w", err)
	}
	return intake.Decode(data)
}
