package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Decision is the plan for one recording: either skip because the artifact is
// already on disk, or proceed with a transfer into Dir/Artifact.Filename.
type Decision struct {
	Skip         bool
	ExistingSize int64
	Artifact     Artifact
	Dir          string
	Path         string
}

// Decide maps a recording onto the archive tree under baseDir, creates the
// date directory if needed, and checks for an existing artifact. Existence
// alone is enough to skip: transfers land under a temporary name and are
// renamed only on success, so a file at the final path is a complete download.
// No checksum or partial-resume is attempted.
func Decide(rec Recording, baseDir string) (Decision, error) {
	artifact := PlanArtifact(rec.StartTime)
	dir := filepath.Join(baseDir, artifact.Dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Decision{}, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, artifact.Filename)
	if info, err := os.Stat(path); err == nil {
		return Decision{
			Skip:         true,
			ExistingSize: info.Size(),
			Artifact:     artifact,
			Dir:          dir,
			Path:         path,
		}, nil
	}

	return Decision{Artifact: artifact, Dir: dir, Path: path}, nil
}
