package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SpoolPath returns the default spool file path.
// Uses XDG_RUNTIME_DIR if set, otherwise the system temp directory.
func SpoolPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("toastkit-%d", os.Getuid()))
	} else {
		dir = filepath.Join(dir, "toastkit")
	}
	return filepath.Join(dir, "requests.jsonl")
}

// Append writes requests to the spool file at path, creating it if needed.
// All requests are written with a single write call.
func Append(path string, reqs ...Request) error {
	if len(reqs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open spool %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write spool %s: %w", path, err)
	}
	return f.Close()
}

// Tail follows a spool file and dispatches every complete line appended to
// it.
type Tail struct {
	path       string
	dispatcher *Dispatcher
	logger     *slog.Logger
	fromStart  bool

	offset  int64
	lineNo  int
	pending []byte
}

// NewTail creates a tail of the spool at path. Unless fromStart is set,
// requests already in the file when Run starts are ignored.
func NewTail(path string, d *Dispatcher, fromStart bool, logger *slog.Logger) *Tail {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tail{
		path:       path,
		dispatcher: d,
		logger:     logger,
		fromStart:  fromStart,
	}
}

// Run watches the spool until ctx is cancelled.
func (t *Tail) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory containing the file (more reliable for writes)
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if !t.fromStart {
		if info, err := os.Stat(t.path); err == nil {
			t.offset = info.Size()
		}
	}
	t.drain(ctx)

	t.logger.Debug("tailing spool", "path", t.path, "offset", t.offset)

	filename := filepath.Base(t.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				t.reset()
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				t.drain(ctx)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.logger.Warn("spool watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (t *Tail) reset() {
	t.offset = 0
	t.lineNo = 0
	t.pending = nil
}

// drain reads everything past the current offset and dispatches complete
// lines. A trailing partial line is kept until its newline arrives.
func (t *Tail) drain(ctx context.Context) {
	f, err := os.Open(t.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			t.logger.Warn("failed to open spool", "path", t.path, "error", err)
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.logger.Warn("failed to stat spool", "path", t.path, "error", err)
		return
	}
	if info.Size() < t.offset {
		t.logger.Debug("spool truncated, rewinding", "path", t.path)
		t.reset()
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		t.logger.Warn("failed to seek spool", "path", t.path, "error", err)
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.logger.Warn("failed to read spool", "path", t.path, "error", err)
		return
	}
	t.offset += int64(len(data))

	t.pending = append(t.pending, data...)
	for {
		idx := bytes.IndexByte(t.pending, '\n')
		if idx < 0 {
			break
		}
		line := t.pending[:idx]
		t.pending = t.pending[idx+1:]
		t.lineNo++
		t.dispatcher.handleLine(ctx, line, t.lineNo, t.path)
	}
	if len(t.pending) > maxLineSize {
		t.logger.Warn("dropping oversized spool line", "path", t.path, "size", len(t.pending))
		t.pending = nil
	}
}
