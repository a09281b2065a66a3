// Package inbox turns files dropped into a directory into process
// activations.
//
// Each "*.json" file holds an encoded intent; each "*.txt" file holds plain
// text and is treated as a text/plain share. Files are consumed once
// parsed. Every accepted file is published on the event bus as an
// activation.received event with a fresh activation id.
package inbox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/intent"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

// Source is the activation source reported for inbox files.
const Source = "inbox"

const (
	extIntent   = ".json"
	extText     = ".txt"
	extRejected = ".rejected"

	defaultDebounce = 50 * time.Millisecond
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches an inbox directory for activation files.
type Watcher struct {
	dir      string
	bus      *event.Bus
	logger   *logging.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher

	processMu sync.Mutex // serializes file consumption
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
}

// New creates a watcher for dir, creating the directory if needed.
func New(dir string, bus *event.Bus, opts ...Option) (*Watcher, error) {
	if bus == nil {
		panic("inbox: Bus must not be nil")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create inbox %s", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		bus:      bus,
		logger:   logging.NopLogger(),
		debounce: defaultDebounce,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("inbox").With("dir", dir)
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Start begins watching. Files already present are consumed first.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return errors.Wrapf(err, "watch inbox %s", w.dir)
	}
	if _, err := w.Drain(); err != nil {
		w.logger.Warn("initial inbox scan failed", "error", err.Error())
	}

	w.started = true
	go w.watchLoop()
	w.logger.Info("inbox watcher started")
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		if w.started {
			<-w.doneCh
		}
	})
}

// Drain consumes every activation file currently in the inbox, oldest
// name first, and returns how many were accepted.
func (w *Watcher) Drain() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isActivationFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	accepted := 0
	for _, name := range names {
		if w.consume(filepath.Join(w.dir, name)) {
			accepted++
		}
	}
	return accepted, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.doneCh)

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			debounceTimer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isActivationFile(filepath.Base(ev.Name)) {
				continue
			}
			pending[ev.Name] = struct{}{}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)

			for _, p := range paths {
				w.consume(p)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watch error", "error", err.Error())
		}
	}
}

// consume parses and removes one file, publishing its activation. It
// reports whether the file was accepted.
func (w *Watcher) consume(path string) bool {
	w.processMu.Lock()
	defer w.processMu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("read activation file failed", "file", path, "error", err.Error())
		}
		return false
	}

	in, err := parse(filepath.Ext(path), data)
	if err != nil {
		w.logger.Warn("rejecting activation file",
			"file", path,
			"error", fmt.Errorf("%w: %v", errors.ErrMalformedActivation, err).Error())
		if rerr := os.Rename(path, path+extRejected); rerr != nil {
			w.logger.Warn("quarantine failed", "file", path, "error", rerr.Error())
		}
		return false
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("remove activation file failed", "file", path, "error", err.Error())
	}

	id := uuid.NewString()
	w.logger.Info("activation received", "activation_id", id, "intent", in.String())
	w.bus.Publish(event.NewActivationReceivedEvent(id, in, Source))
	return true
}

func parse(ext string, data []byte) (intent.Intent, error) {
	switch ext {
	case extIntent:
		return intent.Decode(data)
	case extText:
		return intent.NewShareText(strings.TrimSuffix(string(data), "\n")), nil
	default:
		return intent.Intent{}, fmt.Errorf("unsupported file type %q", ext)
	}
}

func isActivationFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := filepath.Ext(name)
	return ext == extIntent || ext == extText
}

// Write places in into dir as a new activation file. The file is written
// under a hidden name and renamed so the watcher never sees a partial
// write. It returns the final path.
func Write(dir string, in intent.Intent) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		return "", err
	}
	return writeFile(dir, extIntent, buf.Bytes())
}

// WriteText places text into dir as a plain-text activation file.
func WriteText(dir, text string) (string, error) {
	return writeFile(dir, extText, []byte(text))
}

func writeFile(dir, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return final, nil
}
