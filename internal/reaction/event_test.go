package reaction

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventAdd, "add"},
		{EventAddDir, "addDir"},
		{EventUnlink, "unlink"},
		{EventUnlinkDir, "unlinkDir"},
		{EventChange, "change"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestEvent_DerivedPaths(t *testing.T) {
	event := Event{Type: EventAdd, FullPath: "/a/b/c.txt"}

	assert.Equal(t, "/a/b", event.ParentPath())
	assert.Equal(t, "b", event.ParentName())
	assert.Equal(t, "c.txt", event.Filename())
}

func TestEvent_DerivedPathsAtRoot(t *testing.T) {
	event := Event{Type: EventAddDir, FullPath: "/top"}

	assert.Equal(t, "/", event.ParentPath())
	assert.Equal(t, "/", event.ParentName())
	assert.Equal(t, "top", event.Filename())
}

func TestStatsFromFileInfo(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	info, err := os.Stat(wd)
	require.NoError(t, err)

	stats := StatsFromFileInfo(info)
	require.NotNil(t, stats)
	assert.True(t, stats.IsDir)
	assert.Equal(t, info.Size(), stats.Size)
	assert.Equal(t, info.ModTime(), stats.ModTime)
}

func TestStatsFromFileInfo_Nil(t *testing.T) {
	assert.Nil(t, StatsFromFileInfo(nil))
}
