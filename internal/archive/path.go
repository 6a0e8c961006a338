package archive

import (
	"fmt"
	"path/filepath"
	"time"
)

// Artifact is the local file a recording maps to, relative to the archive
// root: a YYYY/MM/DD directory and a filename carrying both the local time
// and the epoch start time.
type Artifact struct {
	Dir      string
	Filename string
}

func (a Artifact) RelPath() string {
	return filepath.Join(a.Dir, a.Filename)
}

// PlanArtifact maps a recording's start time to its archive location. The
// path is a deterministic function of the start time alone, so two recordings
// starting at the same second collapse onto one artifact and the later one is
// skipped as a duplicate. The timestamp is interpreted in local time.
func PlanArtifact(startTime int64) Artifact {
	t := time.Unix(startTime, 0)
	return Artifact{
		Dir:      filepath.Join(t.Format("2006"), t.Format("01"), t.Format("02")),
		Filename: fmt.Sprintf("%s-%d.mp4", t.Format("20060102_150405"), startTime),
	}
}
