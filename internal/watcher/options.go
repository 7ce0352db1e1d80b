package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// defaultIgnorePatterns covers editor scratch files and OS metadata that
// would otherwise fire a reaction on every save.
var defaultIgnorePatterns = []string{
	".DS_Store",
	"Thumbs.db",
	"*.tmp",
	"*.temp",
	"*.swp",
	"*.part",
}

// Options tunes which paths produce events and how long a file must stay
// quiet before its event is emitted.
type Options struct {
	// IgnorePatterns are glob patterns matched against path basenames.
	// Leaving it nil selects defaultIgnorePatterns; an explicit empty slice
	// disables pattern filtering.
	IgnorePatterns []string

	// SettleDelay is how long a file must stop changing before the watcher
	// considers a write burst finished.
	SettleDelay time.Duration

	// IgnoreHidden drops dotfiles and everything beneath a dot directory.
	IgnoreHidden bool
}

func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 100 * time.Millisecond
	}

	// Hidden paths are only ignored by default together with the default
	// patterns. Explicit patterns, even an empty slice, leave IgnoreHidden
	// as the caller set it.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = defaultIgnorePatterns
		o.IgnoreHidden = true
	}
}

// shouldIgnore reports whether a path is filtered out before any settle
// tracking or event emission happens.
func (o *Options) shouldIgnore(path string) bool {
	if o.IgnoreHidden && hasHiddenComponent(path) {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// hasHiddenComponent reports whether any element of the path is a dotfile.
func hasHiddenComponent(path string) bool {
	for _, part := range strings.Split(filepath.Clean(path), string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
