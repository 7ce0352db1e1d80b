package reaction

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// EventType represents the type of filesystem event that triggers a reaction.
type EventType int

const (
	// EventAdd is emitted when a new file is detected
	EventAdd EventType = iota
	// EventAddDir is emitted when a new directory is detected
	EventAddDir
	// EventUnlink is emitted when a file is deleted
	EventUnlink
	// EventUnlinkDir is emitted when a directory is deleted
	EventUnlinkDir
	// EventChange is emitted when an existing file changes
	EventChange
)

// String returns the string representation of the event type.
// These names are also what templates see as event.eventType.
func (t EventType) String() string {
	switch t {
	case EventAdd:
		return "add"
	case EventAddDir:
		return "addDir"
	case EventUnlink:
		return "unlink"
	case EventUnlinkDir:
		return "unlinkDir"
	case EventChange:
		return "change"
	default:
		return "unknown"
	}
}

// FileStats is an optional metadata snapshot taken when the event was observed.
type FileStats struct {
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// StatsFromFileInfo converts an os.FileInfo into a FileStats snapshot.
func StatsFromFileInfo(info os.FileInfo) *FileStats {
	if info == nil {
		return nil
	}
	return &FileStats{
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

// Event describes one filesystem occurrence. It is created by the upstream
// watcher and consumed read-only by the reaction pipeline; it is never
// mutated after creation.
type Event struct {
	// UUID identifies this event instance. Optional.
	UUID string

	// Type is the kind of event (add, addDir, unlink, unlinkDir, change)
	Type EventType

	// FullPath is the absolute path the event refers to. Never empty.
	FullPath string

	// Stats is an optional metadata snapshot. May be nil (e.g. for unlink events).
	Stats *FileStats

	// Extra is optional opaque context supplied by the event source. May be nil.
	Extra any
}

// Derived path fields are recomputed per use rather than stored on the event.

// ParentPath returns the directory containing FullPath.
func (e Event) ParentPath() string {
	return filepath.Dir(e.FullPath)
}

// Filename returns the basename of FullPath.
func (e Event) Filename() string {
	return filepath.Base(e.FullPath)
}

// ParentName returns the basename of the directory containing FullPath.
func (e Event) ParentName() string {
	return filepath.Base(filepath.Dir(e.FullPath))
}
