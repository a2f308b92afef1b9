package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"whosaid/internal/config"
	"whosaid/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Selection is what the user picked: films in display order, the minimum
// line threshold and the character to focus on.
type Selection struct {
	Films    []string `mapstructure:"films"`
	MinLines int      `mapstructure:"min_lines"`
	Focus    string   `mapstructure:"focus"`
}

// Snapshot is an immutable view of the current selection.
type Snapshot struct {
	Version   int64
	LoadedAt  time.Time
	Selection Selection
}

// ChangeListener runs after every successful reload.
type ChangeListener func(Snapshot)

// SelectionLoader reads the selection file and, once Watch is called, keeps it
// in sync with edits on disk. Keys missing from the file fall back to the
// defaults given at construction.
type SelectionLoader struct {
	path     string
	v        *viper.Viper
	defaults Selection

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
	watching  bool
}

// NewStatic wraps a fixed selection; Watch is a no-op.
func NewStatic(sel Selection) *SelectionLoader {
	l := &SelectionLoader{defaults: sel}
	l.snapshot = Snapshot{Version: 1, LoadedAt: time.Now(), Selection: normalize(sel)}
	return l
}

// NewSelectionLoader reads path once. Call Watch to follow changes.
func NewSelectionLoader(path string, defaults Selection) (*SelectionLoader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("selection loader requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read selection failed: %w", err)
	}
	l := &SelectionLoader{path: path, v: v, defaults: defaults}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Watch starts following the selection file.
func (l *SelectionLoader) Watch() {
	if l.v == nil {
		return
	}
	l.mu.Lock()
	if l.watching {
		l.mu.Unlock()
		return
	}
	l.watching = true
	l.mu.Unlock()
	l.v.OnConfigChange(func(evt fsnotify.Event) {
		if err := l.reload(); err != nil {
			logger.Errorf("selection reload failed (%s): %v", evt.Name, err)
			return
		}
		l.notify()
	})
	l.v.WatchConfig()
}

// Path is empty for static selections.
func (l *SelectionLoader) Path() string {
	return l.path
}

func (l *SelectionLoader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneSnapshot(l.snapshot)
}

// Subscribe registers fn; fn receives the current snapshot right away.
func (l *SelectionLoader) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	snap := cloneSnapshot(l.snapshot)
	l.mu.Unlock()
	go safeCall(fn, snap)
}

func (l *SelectionLoader) notify() {
	l.mu.RLock()
	snap := cloneSnapshot(l.snapshot)
	listeners := append([]ChangeListener(nil), l.listeners...)
	l.mu.RUnlock()
	for _, fn := range listeners {
		go safeCall(fn, snap)
	}
}

func safeCall(fn ChangeListener, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("selection listener panic: %v", r)
		}
	}()
	fn(snap)
}

func (l *SelectionLoader) reload() error {
	var sel Selection
	if err := l.v.Unmarshal(&sel); err != nil {
		return fmt.Errorf("parse selection failed: %w", err)
	}
	if !l.v.IsSet("films") {
		sel.Films = append([]string(nil), l.defaults.Films...)
	}
	if !l.v.IsSet("min_lines") {
		sel.MinLines = l.defaults.MinLines
	}
	if !l.v.IsSet("focus") {
		sel.Focus = l.defaults.Focus
	}
	sel = normalize(sel)
	if err := config.ValidateSelection(sel.Films, sel.MinLines); err != nil {
		return err
	}
	l.mu.Lock()
	l.snapshot = Snapshot{
		Version:   l.snapshot.Version + 1,
		LoadedAt:  time.Now(),
		Selection: sel,
	}
	l.mu.Unlock()
	logger.Infof("Selection loaded from %s: films=%v min_lines=%d focus=%q",
		filepath.Base(l.path), sel.Films, sel.MinLines, sel.Focus)
	return nil
}

func normalize(sel Selection) Selection {
	films := make([]string, 0, len(sel.Films))
	seen := make(map[string]bool, len(sel.Films))
	for _, f := range sel.Films {
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" || seen[key] {
			continue
		}
		seen[key] = true
		films = append(films, f)
	}
	sel.Films = films
	sel.Focus = strings.TrimSpace(sel.Focus)
	return sel
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := src
	dst.Selection.Films = append([]string(nil), src.Selection.Films...)
	return dst
}
