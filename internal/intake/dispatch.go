package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/toast"
)

const maxLineSize = 1024 * 1024

// Target receives decoded requests. *app.App implements it.
type Target interface {
	Configure(ctx context.Context, p config.Partial) error
	Show(ctx context.Context, spec toast.Spec) (toast.Handle, error)
	ShowLoading(ctx context.Context, id string, spec toast.LoadingSpec) (string, error)
	UpdateLoading(ctx context.Context, id string, outcome toast.Outcome, spec toast.ResultSpec) error
	DismissID(ctx context.Context, id string) (int, error)
}

// Dispatcher applies requests to a Target at a bounded rate.
type Dispatcher struct {
	target  Target
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher allowing ratePerSec requests per second
// with the given burst. A non-positive rate disables throttling.
func NewDispatcher(target Target, ratePerSec float64, burst int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Limit(ratePerSec)
	if ratePerSec <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &Dispatcher{
		target:  target,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Dispatch waits for a rate token and applies req.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	switch req.Op {
	case OpShow:
		h, err := d.target.Show(ctx, req.Spec())
		if err != nil {
			return err
		}
		d.logger.Debug("intake show", "handle", h, "id", req.ID)
		return nil

	case OpLoading:
		_, err := d.target.ShowLoading(ctx, req.ID, req.LoadingSpec())
		return err

	case OpUpdate:
		outcome, err := toast.ParseOutcome(req.Outcome)
		if err != nil {
			return err
		}
		return d.target.UpdateLoading(ctx, req.ID, outcome, req.ResultSpec())

	case OpDismiss:
		n, err := d.target.DismissID(ctx, req.ID)
		if err != nil {
			return err
		}
		d.logger.Debug("intake dismiss", "id", req.ID, "dismissed", n)
		return nil

	case OpConfigure:
		return d.target.Configure(ctx, *req.Config)

	default:
		return &RequestError{Message: fmt.Sprintf("unknown op %q", req.Op), Err: toast.ErrInvalidArgument}
	}
}

// Serve reads requests from r, one JSON object per line, until EOF or ctx
// is cancelled. Malformed lines and failed requests are logged and skipped.
// It returns the number of requests applied.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, source string) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	applied := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if ctx.Err() != nil {
			return applied, ctx.Err()
		}

		if d.handleLine(ctx, scanner.Bytes(), lineNo, source) {
			applied++
		}
	}

	if err := scanner.Err(); err != nil {
		return applied, &RequestError{Message: "failed to read " + source, Err: err}
	}
	return applied, ctx.Err()
}

// handleLine decodes and applies one line, reporting whether it succeeded.
func (d *Dispatcher) handleLine(ctx context.Context, line []byte, lineNo int, source string) bool {
	if strings.TrimSpace(string(line)) == "" {
		return false
	}

	req, err := Decode(line)
	if err != nil {
		var rerr *RequestError
		if errors.As(err, &rerr) {
			rerr.Line = lineNo
		}
		d.logger.Warn("skipping request", "source", source, "error", err)
		return false
	}

	if err := d.Dispatch(ctx, req); err != nil {
		if ctx.Err() != nil {
			return false
		}
		d.logger.Warn("request failed",
			"source", source,
			"line", lineNo,
			"op", string(req.Op),
			"id", req.ID,
			"error", err,
		)
		return false
	}
	return true
}
