package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tapodump/internal/device"
)

// DefaultWindowSize is the stream chunk granularity. Smaller windows slow the
// transfer down but keep progress events responsive.
const DefaultWindowSize = 1000

type Status int

const (
	StatusSkipped Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one recording. Reason is set only for
// failures.
type Outcome struct {
	Status Status
	Reason string
}

// Executor drives a single recording's byte transfer through the device
// streamer. A failed transfer is reported as an Outcome, never an error that
// could abort the batch.
type Executor struct {
	streamer   device.Streamer
	windowSize int
	out        io.Writer
}

func NewExecutor(streamer device.Streamer, windowSize int, out io.Writer) *Executor {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if out == nil {
		out = os.Stdout
	}
	return &Executor{streamer: streamer, windowSize: windowSize, out: out}
}

// Transfer streams the recording into a .part file next to the target and
// renames it on success, so an artifact at its final path is always complete.
// Progress with a known total is reported only when the percentage crosses a
// 5-point boundary; indeterminate phases report action transitions only.
func (e *Executor) Transfer(ctx context.Context, rec Recording, dec Decision, timeCorrection int64) Outcome {
	partName := dec.Artifact.Filename + ".part"
	partPath := filepath.Join(dec.Dir, partName)

	req := device.StreamRequest{
		StartTime:      rec.StartTime,
		EndTime:        rec.EndTime,
		TimeCorrection: timeCorrection,
		OutputDir:      dec.Dir,
		Filename:       partName,
		WindowSize:     e.windowSize,
	}

	lastBucket := 0
	lastAction := ""
	err := e.streamer.Stream(ctx, req, func(ev device.ProgressEvent) {
		if ev.Total > 0 {
			percent := int(float64(ev.Progress) / float64(ev.Total) * 100)
			if bucket := percent / 5; bucket != lastBucket {
				lastBucket = bucket
				fmt.Fprintf(e.out, "  %s: [%s] %d%%\n", ev.CurrentAction, renderBar(percent), percent)
			}
			return
		}
		if ev.CurrentAction != lastAction {
			lastAction = ev.CurrentAction
			fmt.Fprintf(e.out, "  %s...\n", ev.CurrentAction)
		}
	})
	if err != nil {
		// leave nothing behind that Decide could mistake for an artifact
		os.Remove(partPath)
		return Outcome{Status: StatusFailed, Reason: err.Error()}
	}

	if err := os.Rename(partPath, dec.Path); err != nil {
		os.Remove(partPath)
		return Outcome{Status: StatusFailed, Reason: fmt.Sprintf("failed to finalize artifact: %v", err)}
	}
	return Outcome{Status: StatusSucceeded}
}

func renderBar(percent int) string {
	const width = 20
	filled := width * percent / 100
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}
