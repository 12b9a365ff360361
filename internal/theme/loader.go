package theme

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
)

// Applier injects resolved CSS into the running UI. This is the
// environment-specific end of the style pipeline; everything up to it is
// toolkit-agnostic.
type Applier func(css string)

// CSSLoader resolves a host-supplied theme file reference, inlines its
// imports and hands the CSS to the applier. It implements the style loading
// contract of the client: the reference is used exactly as supplied, with no
// transformation beyond resolution.
type CSSLoader struct {
	mu      sync.Mutex
	logger  *slog.Logger
	apply   Applier
	current *Theme
	watcher *Watcher
}

// NewCSSLoader creates a loader that applies CSS through apply.
func NewCSSLoader(apply Applier, logger *slog.Logger) *CSSLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if apply == nil {
		apply = func(string) {}
	}
	return &CSSLoader{logger: logger, apply: apply}
}

// Load resolves themeFile (a theme:// ref or an on-disk path), inlines its
// imports and applies the result. It returns once application is complete.
func (l *CSSLoader) Load(ctx context.Context, themeFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := resolve(themeFile)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.current = t
	l.apply(t.CSS)
	l.mu.Unlock()

	l.logger.Info("applied theme", "name", t.Name, "bundled", t.Bundled)
	return nil
}

// resolve turns a theme file reference into a loaded theme.
func resolve(themeFile string) (*Theme, error) {
	if name, ok := strings.CutPrefix(themeFile, FileScheme); ok {
		if !IsBundled(name) {
			return nil, fmt.Errorf("bundled theme %q not found", name)
		}
		css, _ := BundledCSS(name)
		return &Theme{
			Name:    name,
			CSS:     InlineImports(css, "", nil),
			Bundled: true,
		}, nil
	}

	name := strings.TrimSuffix(filepath.Base(themeFile), ".css")
	return Load(name, themeFile)
}

// Current returns the most recently applied theme, or nil.
func (l *CSSLoader) Current() *Theme {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// StartHotReload watches the current theme file and re-applies it on change.
// Bundled themes are embedded and never watched.
func (l *CSSLoader) StartHotReload(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil || l.current.Bundled {
		l.logger.Debug("not watching bundled theme")
		return
	}

	if l.watcher != nil {
		l.watcher.Stop()
	}

	name := l.current.Name
	l.watcher = NewWatcher(l.current, l.logger)
	l.watcher.SetChangeFunc(func(css string) {
		l.mu.Lock()
		l.apply(css)
		l.mu.Unlock()
		l.logger.Info("hot-reloaded theme", "name", name)
	})

	if err := l.watcher.Start(ctx); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
	}
}

// StopHotReload stops watching the theme file.
func (l *CSSLoader) StopHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
}
