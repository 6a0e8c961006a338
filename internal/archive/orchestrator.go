package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"tapodump/internal/device"
	"tapodump/pkg/utils"
)

// Phase is the orchestrator's position in a batch run.
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseCounting
	PhaseDownloading
	PhaseSummarizing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseCounting:
		return "counting"
	case PhaseDownloading:
		return "downloading"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Counters accumulates per-recording outcomes for one run. The orchestrator
// is the only writer; every processed recording bumps exactly one of
// Successful/Skipped/Failed.
type Counters struct {
	Successful int
	Skipped    int
	Failed     int
	Deleted    int
}

// Summary is the final report of one batch run.
type Summary struct {
	RunID           string
	StartedAt       time.Time
	Counters        Counters
	TotalRecordings int
	TotalDuration   time.Duration
	Elapsed         time.Duration
	OutputDir       string
	Interrupted     bool
	NothingToDo     bool
}

// Options configures a batch run. DeleteAfterDownload is threaded through
// construction rather than living in package state.
type Options struct {
	OutputDir           string
	WindowSize          int
	DeleteAfterDownload bool

	// Output receives human-readable progress lines. Default os.Stdout.
	Output io.Writer
}

// Orchestrator runs the full download batch: scan the catalog, plan each
// recording, transfer sequentially, and report. Transfers are strictly one at
// a time; the camera cannot sustain more than one outstanding stream.
type Orchestrator struct {
	indexer   *Indexer
	querier   device.Querier
	executor  *Executor
	retention *Retention
	opts      Options
	out       io.Writer
	phase     Phase
}

func NewOrchestrator(q device.Querier, s device.Streamer, caller device.FunctionCaller, opts Options) *Orchestrator {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Orchestrator{
		indexer:   NewIndexer(q),
		querier:   q,
		executor:  NewExecutor(s, opts.WindowSize, out),
		retention: NewRetention(caller, opts.DeleteAfterDownload),
		opts:      opts,
		out:       out,
		phase:     PhaseScanning,
	}
}

// Phase reports the orchestrator's current position in the run.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Run executes one batch. Errors are returned only for failures before any
// per-recording state exists (catalog scan, time correction); individual
// transfer failures are counted and the loop continues. Cancelling ctx stops
// the batch between recordings and leaves completed artifacts intact, so a
// rerun resumes through the planner's skip logic.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: start,
		OutputDir: o.opts.OutputDir,
	}

	if err := os.MkdirAll(o.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", o.opts.OutputDir, err)
	}

	o.phase = PhaseScanning
	fmt.Fprintln(o.out, "Scanning camera storage...")

	dates, err := o.indexer.ListDates(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(o.out, "Found %d date(s) with recordings\n", len(dates))

	var recordings []Recording
	var totalDuration time.Duration
	for _, date := range dates {
		recs, err := o.indexer.ListRecordings(ctx, date)
		if err != nil {
			return nil, err
		}
		var dateDuration time.Duration
		for _, rec := range recs {
			dateDuration += rec.Duration()
		}
		totalDuration += dateDuration
		recordings = append(recordings, recs...)
		fmt.Fprintf(o.out, "  %s: %2d recordings, %s\n", date, len(recs), utils.FormatDuration(dateDuration))
	}

	o.phase = PhaseCounting
	summary.TotalRecordings = len(recordings)
	summary.TotalDuration = totalDuration

	if len(recordings) == 0 {
		o.phase = PhaseDone
		summary.NothingToDo = true
		summary.Elapsed = time.Since(start)
		fmt.Fprintln(o.out, "No recordings to download")
		return summary, nil
	}

	fmt.Fprintf(o.out, "Total: %d recordings, %s\n", len(recordings), utils.FormatDuration(totalDuration))

	o.phase = PhaseDownloading
	timeCorrection, err := o.querier.TimeCorrection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get time correction: %w", err)
	}

	if o.opts.DeleteAfterDownload {
		fmt.Fprintln(o.out, "WARNING: recordings will be deleted from the camera after download")
	}

	total := len(recordings)
	processed := 0
	for i, rec := range recordings {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		index := i + 1
		switch decision, err := Decide(rec, o.opts.OutputDir); {
		case err != nil:
			summary.Counters.Failed++
			processed++
			fmt.Fprintf(o.out, "[%3d/%d] failed: %v\n", index, total, err)

		case decision.Skip:
			summary.Counters.Skipped++
			processed++
			fmt.Fprintf(o.out, "[%3d/%d] %s already exists (%s), skipping\n",
				index, total, decision.Artifact.RelPath(), utils.FormatBytes(decision.ExistingSize))

		default:
			fmt.Fprintf(o.out, "[%3d/%d] downloading %s (%s, %s)\n",
				index, total, decision.Artifact.RelPath(), utils.FormatDuration(rec.Duration()), rec.Type)

			outcome := o.executor.Transfer(ctx, rec, decision, timeCorrection)
			if outcome.Status == StatusSucceeded {
				summary.Counters.Successful++
				processed++
				if o.opts.DeleteAfterDownload && o.retention.AttemptDelete(ctx, rec) {
					summary.Counters.Deleted++
					fmt.Fprintln(o.out, "  removed from camera")
				}
			} else {
				if ctx.Err() != nil {
					// abandoned in flight, not a transfer failure
					summary.Interrupted = true
				} else {
					summary.Counters.Failed++
					processed++
					fmt.Fprintf(o.out, "  download failed: %s\n", outcome.Reason)
				}
			}
		}

		if summary.Interrupted {
			break
		}
		if index%10 == 0 || index == total {
			o.printTally(summary, processed, total, start)
		}
	}

	o.phase = PhaseSummarizing
	summary.Elapsed = time.Since(start)
	o.printSummary(summary)
	o.phase = PhaseDone
	return summary, nil
}

func (o *Orchestrator) printTally(summary *Summary, processed, total int, start time.Time) {
	remaining := total - processed
	eta := "unknown"
	if processed > 0 {
		avg := time.Since(start) / time.Duration(processed)
		eta = utils.FormatDuration(time.Duration(remaining) * avg)
	}
	fmt.Fprintf(o.out, "Progress: %d downloaded | %d skipped | %d failed | %d remaining | ETA %s\n",
		summary.Counters.Successful, summary.Counters.Skipped, summary.Counters.Failed, remaining, eta)
}

func (o *Orchestrator) printSummary(summary *Summary) {
	fmt.Fprintln(o.out, "Download completed")
	if summary.Interrupted {
		fmt.Fprintln(o.out, "  run interrupted, already downloaded files are kept")
	}
	fmt.Fprintf(o.out, "  downloaded: %d\n", summary.Counters.Successful)
	fmt.Fprintf(o.out, "  skipped (already exists): %d\n", summary.Counters.Skipped)
	fmt.Fprintf(o.out, "  failed: %d\n", summary.Counters.Failed)
	if o.opts.DeleteAfterDownload {
		fmt.Fprintf(o.out, "  deleted from camera: %d\n", summary.Counters.Deleted)
	}
	fmt.Fprintf(o.out, "  elapsed: %s\n", utils.FormatDuration(summary.Elapsed))
	fmt.Fprintf(o.out, "  archive root: %s\n", summary.OutputDir)
}
