package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// eventType describes the nature of a change notification.
type eventType int

const (
	// eventCollectionChanged means documents of one collection were added,
	// rewritten or removed.
	eventCollectionChanged eventType = iota
	// eventInvalidated means the change could not be attributed to a single
	// collection and every live query should re-read.
	eventInvalidated
	// eventFailed ends the watch.
	eventFailed
)

type event struct {
	Type       eventType
	Collection string
	Err        error
}

// watchDelay is how long bursts of filesystem activity are coalesced.
const watchDelay = 100 * time.Millisecond

// Subscribe follows q by watching the store directory and re-running the query
// after every burst of changes to its collection.
func (s *Disk) Subscribe(ctx context.Context, q Query) (<-chan Push, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	changes, err := s.watch(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	log := zerolog.Ctx(ctx).With().Str("scope", q.Scope()).Logger()

	out := make(chan Push, 1)
	go func() {
		defer close(out)
		defer cancel()

		deliver := func() bool {
			snap, err := s.Query(ctx, q)
			if err != nil {
				deliverFinal(ctx, out, Push{Err: err})
				return false
			}
			log.Debug().Int("docs", len(snap)).Msg("snapshot")
			offer(out, Push{Docs: snap})
			return true
		}

		if !deliver() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-changes:
				if !ok {
					if ctx.Err() == nil {
						deliverFinal(ctx, out, Push{Err: errors.New("store: watch closed")})
					}
					return
				}
				switch ev.Type {
				case eventFailed:
					deliverFinal(ctx, out, Push{Err: ev.Err})
					return
				case eventCollectionChanged:
					if ev.Collection != q.Collection {
						continue
					}
				}
				if !deliver() {
					return
				}
			}
		}
	}()
	return out, nil
}

// watch streams change events until ctx is cancelled. The channel is closed
// once ctx is done or after an eventFailed.
func (s *Disk) watch(ctx context.Context) (<-chan event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	log := zerolog.Ctx(ctx)
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				log.Warn().Err(err).Msg("store: watcher close")
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan event, 64)
	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		var mu sync.Mutex
		stopped := false
		send := func(ev event) {
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return
			}
			select {
			case events <- ev:
			default:
				// A full buffer already holds a pending re-read.
			}
		}

		throttle := newEventThrottle(watchDelay)
		defer func() {
			throttle.Stop()
			mu.Lock()
			stopped = true
			mu.Unlock()
		}()

		addDir := func(dir string) {
			sub, err := collectDirs(dir)
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("store: enumerate new directory")
				return
			}
			for _, d := range sub {
				if _, found := watched[d]; found {
					continue
				}
				if err := watcher.Add(d); err != nil {
					log.Warn().Err(err).Str("dir", d).Msg("store: watch new directory")
					continue
				}
				watched[d] = struct{}{}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Stop()
				mu.Lock()
				stopped = true
				mu.Unlock()
				select {
				case events <- event{Type: eventFailed, Err: fmt.Errorf("store: watch: %w", err)}:
				case <-ctx.Done():
				}
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						// New nested collection: files may already be inside.
						addDir(filepath.Clean(evt.Name))
						throttle.Enqueue(event{Type: eventInvalidated}, send)
						continue
					}
				}
				collection := s.collectionForPath(evt.Name)
				if collection == "" {
					throttle.Enqueue(event{Type: eventInvalidated}, send)
					continue
				}
				throttle.Enqueue(event{Type: eventCollectionChanged, Collection: collection}, send)
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// collectionForPath maps a document file back to its collection path. It
// returns "" for anything that is not a document file.
func (s *Disk) collectionForPath(path string) string {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	if !strings.HasSuffix(rel, docExt) {
		return ""
	}
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." || validCollection(dir) != nil {
		return ""
	}
	return dir
}

// eventThrottle coalesces rapid change notifications so that live queries
// re-read once per burst of filesystem activity instead of on every write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[eventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[eventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev event, send func(event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.Collection] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[eventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, ok := pending[eventInvalidated]; ok {
		send(event{Type: eventInvalidated})
		return
	}
	for collection := range pending[eventCollectionChanged] {
		send(event{Type: eventCollectionChanged, Collection: collection})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
