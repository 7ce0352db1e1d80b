package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.Equal(t, 100*time.Millisecond, opts.SettleDelay)
	assert.NotEmpty(t, opts.IgnorePatterns)
	assert.True(t, opts.IgnoreHidden)
}

func TestOptions_ExplicitPatternsRespected(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}, SettleDelay: time.Second}
	opts.setDefaults()

	assert.Equal(t, time.Second, opts.SettleDelay)
	assert.Empty(t, opts.IgnorePatterns)
	assert.False(t, opts.IgnoreHidden)
}

func TestShouldIgnore_Patterns(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	tests := []struct {
		path    string
		ignored bool
	}{
		{"/watch/file.txt", false},
		{"/watch/file.tmp", true},
		{"/watch/file.swp", true},
		{"/watch/download.part", true},
		{"/watch/.DS_Store", true},
		{"/watch/Thumbs.db", true},
		{"/watch/.hidden/file.txt", true},
		{"/watch/.git/config", true},
		{"/watch/sub/dir/data.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignored, opts.shouldIgnore(tt.path))
		})
	}
}

func TestShouldIgnore_HiddenAllowedWhenDisabled(t *testing.T) {
	opts := Options{IgnorePatterns: []string{"*.bak"}, IgnoreHidden: false}
	opts.setDefaults()

	assert.False(t, opts.shouldIgnore("/watch/.hidden/file.txt"))
	assert.True(t, opts.shouldIgnore("/watch/old.bak"))
}
