// Package inbox watches a drop directory and reports each document that
// lands in it.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/chunkflow/internal/logger"
)

// OutputSuffix marks chunk files written next to inbox documents.
// Files carrying it are never reported.
const OutputSuffix = "_chunks.json"

// Arrival is a document found in the inbox.
type Arrival struct {
	// Path is the absolute file path.
	Path string

	// Name is the file's base name.
	Name string

	// Content is the file's bytes at the time it was reported.
	Content []byte
}

// Connector reports documents created in or written to a directory.
// Subdirectories, hidden files and chunk output files are ignored.
type Connector struct {
	root string
	log  *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates an inbox rooted at root. A file:// prefix is accepted.
func New(root string, log *logger.Logger) *Connector {
	if log == nil {
		log = logger.Default()
	}
	return &Connector{
		root: ResolvePath(root),
		log:  log,
	}
}

// ResolvePath converts a file:// URI to a local path.
// Bare paths pass through unchanged.
func ResolvePath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.root
}

// Scan returns the documents already present in the inbox, sorted by name.
func (c *Connector) Scan(ctx context.Context) ([]Arrival, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []Arrival
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || skip(e.Name()) {
			continue
		}
		a, err := read(filepath.Join(c.root, e.Name()))
		if err != nil {
			c.log.Warn("Skipping %s: %v", e.Name(), err)
			continue
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// Watch starts watching the inbox. The returned channel is closed when
// ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan Arrival, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("inbox connector closed")
	}

	info, err := os.Stat(c.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", c.root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.root, err)
	}
	if c.watcher != nil {
		_ = c.watcher.Close()
	}
	c.watcher = watcher

	out := make(chan Arrival)
	go c.loop(ctx, watcher, out)
	return out, nil
}

func (c *Connector) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Arrival) {
	defer close(out)

	// Last reported size and modification time per path, so a file written
	// in several steps is reported once per distinct state.
	seen := make(map[string]string)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			a := c.handleFsEvent(event)
			if a == nil {
				continue
			}
			if stamp := stampOf(a.Path); stamp != "" {
				if seen[a.Path] == stamp {
					continue
				}
				seen[a.Path] = stamp
			}
			select {
			case out <- *a:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn("Inbox watcher error: %v", err)
		}
	}
}

// handleFsEvent converts a create or write event on a regular file into
// an arrival. Other events yield nil.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Arrival {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}
	if skip(filepath.Base(event.Name)) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}

	a, err := read(event.Name)
	if err != nil {
		c.log.Warn("Skipping %s: %v", event.Name, err)
		return nil
	}
	return a
}

// Close stops the watcher. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

func skip(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, OutputSuffix)
}

// read returns nil for empty files: a file being created is reported
// again when its content is written.
func read(path string) (*Arrival, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}
	return &Arrival{Path: path, Name: filepath.Base(path), Content: content}, nil
}

func stampOf(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano())
}
