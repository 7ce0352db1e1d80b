package reaction

import "os"

// ProbePath is the fixed placeholder path used for construction-time dry
// runs. It never refers to a real file; templates and generators only need a
// plausible path to render against.
const ProbePath = "/tmp/shellhook/probe.txt"

// newProbeEvent builds the synthetic event used to pre-validate command
// sources at construction. The path and type are fixed placeholders; the
// stats snapshot is real, taken from the process's own working directory, so
// templates that touch event.stats are exercised against genuine metadata.
func newProbeEvent() Event {
	event := Event{
		Type:     EventChange,
		FullPath: ProbePath,
		Extra:    map[string]any{"probe": true},
	}

	if wd, err := os.Getwd(); err == nil {
		if info, err := os.Stat(wd); err == nil {
			event.Stats = StatsFromFileInfo(info)
		}
	}

	return event
}
