// Package intake feeds toast requests from outside the process into an App.
//
// Requests are JSON objects, one per line. They arrive on standard input or
// are appended to a spool file that a running instance tails. Desktop
// notifications received over D-Bus are converted to the same requests.
package intake

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/toast"
)

// Op names a request operation.
type Op string

const (
	OpShow      Op = "show"
	OpLoading   Op = "loading"
	OpUpdate    Op = "update"
	OpDismiss   Op = "dismiss"
	OpConfigure Op = "configure"
)

// Request is one line of intake input.
type Request struct {
	Op       Op               `json:"op"`
	ID       string           `json:"id,omitempty"`
	Heading  string           `json:"heading,omitempty"`
	Title    string           `json:"title,omitempty"` // Alias of Heading
	Message  string           `json:"message,omitempty"`
	Icon     string           `json:"icon,omitempty"`
	IconPath string           `json:"icon_path,omitempty"`
	Duration *config.Duration `json:"duration,omitempty"`
	Outcome  string           `json:"outcome,omitempty"`
	Config   *config.Partial  `json:"config,omitempty"`
}

// RequestError describes a request that could not be decoded or applied.
type RequestError struct {
	Line    int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Decode parses and validates one request line.
func Decode(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, &RequestError{Message: "failed to parse request", Err: err}
	}
	req.Op = Op(strings.ToLower(strings.TrimSpace(string(req.Op))))
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks that the fields required by the request's op are present.
func (r Request) Validate() error {
	if r.Duration != nil && *r.Duration < 0 {
		return &RequestError{Message: fmt.Sprintf("negative duration %s", r.Duration.Duration()), Err: toast.ErrInvalidArgument}
	}

	switch r.Op {
	case OpShow:
		if _, err := toast.ParseIconKind(r.Icon); err != nil {
			return &RequestError{Message: "invalid show request", Err: err}
		}
	case OpLoading, OpDismiss:
		if strings.TrimSpace(r.ID) == "" {
			return &RequestError{Message: fmt.Sprintf("%s request needs an id", r.Op), Err: toast.ErrInvalidArgument}
		}
	case OpUpdate:
		if strings.TrimSpace(r.ID) == "" {
			return &RequestError{Message: "update request needs an id", Err: toast.ErrInvalidArgument}
		}
		if _, err := toast.ParseOutcome(r.Outcome); err != nil {
			return &RequestError{Message: "invalid update request", Err: err}
		}
	case OpConfigure:
		if r.Config == nil {
			return &RequestError{Message: "configure request needs a config object", Err: toast.ErrInvalidArgument}
		}
	case "":
		return &RequestError{Message: "request has no op", Err: toast.ErrInvalidArgument}
	default:
		return &RequestError{Message: fmt.Sprintf("unknown op %q", r.Op), Err: toast.ErrInvalidArgument}
	}
	return nil
}

// heading returns the display heading, accepting title as an alias.
func (r Request) heading() string {
	if r.Heading != "" {
		return sanitizeString(r.Heading)
	}
	return sanitizeString(r.Title)
}

func (r Request) duration() *time.Duration {
	if r.Duration == nil {
		return nil
	}
	return toast.Lasting(r.Duration.Duration())
}

// Spec converts a show request into a toast spec.
func (r Request) Spec() toast.Spec {
	icon, _ := toast.ParseIconKind(r.Icon)
	return toast.Spec{
		ID:       r.ID,
		Heading:  r.heading(),
		Message:  sanitizeString(r.Message),
		Icon:     icon,
		IconPath: r.IconPath,
		Duration: r.duration(),
	}
}

// LoadingSpec converts a loading request.
func (r Request) LoadingSpec() toast.LoadingSpec {
	return toast.LoadingSpec{
		Heading: r.heading(),
		Message: sanitizeString(r.Message),
	}
}

// ResultSpec converts an update request.
func (r Request) ResultSpec() toast.ResultSpec {
	return toast.ResultSpec{
		Heading:  r.heading(),
		Message:  sanitizeString(r.Message),
		Duration: r.duration(),
	}
}

// sanitizeString drops control characters other than newline and tab.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}
