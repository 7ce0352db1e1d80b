package reaction

import (
	"github.com/cbroglie/mustache"

	"github.com/shellhookapp/shellhook-server/internal/errors"
)

// Renderer renders command templates against events. Templates use mustache
// double/triple-brace interpolation and see the event under a single
// top-level "event" key:
//
//	event.uuid        event instance ID (when present)
//	event.eventType   add, addDir, unlink, unlinkDir, change
//	event.fullPath    absolute path
//	event.parentPath  directory containing fullPath
//	event.parentName  basename of parentPath
//	event.filename    basename of fullPath
//	event.stats       metadata snapshot (when present): size, mode, modTime, isDir
//	event.extra       opaque context (when present)
//
// Rendering is a pure function of (template, event).
type Renderer struct{}

// Render renders one template against an event. A failure carries the
// offending template text and the underlying engine error.
func (Renderer) Render(template string, event Event) (string, error) {
	out, err := mustache.Render(template, templateContext(event))
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeRender, "render template %q", template)
	}
	return out, nil
}

// templateContext builds the mustache context for an event. Derived path
// fields are computed here, per render, never cached on the event.
func templateContext(e Event) map[string]any {
	ev := map[string]any{
		"eventType":  e.Type.String(),
		"fullPath":   e.FullPath,
		"parentPath": e.ParentPath(),
		"parentName": e.ParentName(),
		"filename":   e.Filename(),
	}
	if e.UUID != "" {
		ev["uuid"] = e.UUID
	}
	if e.Stats != nil {
		ev["stats"] = map[string]any{
			"size":    e.Stats.Size,
			"mode":    e.Stats.Mode.String(),
			"modTime": e.Stats.ModTime,
			"isDir":   e.Stats.IsDir,
		}
	}
	if e.Extra != nil {
		ev["extra"] = e.Extra
	}
	return map[string]any{"event": ev}
}
