package archive

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tapodump/internal/device"
)

// Catalog responses are pages of mapping entries keyed by numbered result
// names. The format is undocumented and varies between firmware versions, so
// extraction is deliberately lenient: only entries under a recognized key
// prefix with the expected fields are kept, everything else is skipped
// silently rather than aborting the scan.
const (
	dateResultPrefix  = "search_results_"
	videoResultPrefix = "search_video_results_"
)

// ExtractDates pulls the date keys out of a raw recording-dates response.
// Entries without a usable date field are excluded.
func ExtractDates(pages []map[string]any) []string {
	var dates []string
	for _, page := range pages {
		for _, key := range sortedResultKeys(page, dateResultPrefix) {
			entry, ok := page[key].(map[string]any)
			if !ok {
				continue
			}
			date, ok := asString(entry["date"])
			if !ok {
				continue
			}
			dates = append(dates, date)
		}
	}
	return dates
}

// ExtractRecordings pulls recording segments out of a raw per-date response.
// Entries missing a numeric startTime or endTime are excluded.
func ExtractRecordings(pages []map[string]any) []Recording {
	var recordings []Recording
	for _, page := range pages {
		for _, key := range sortedResultKeys(page, videoResultPrefix) {
			entry, ok := page[key].(map[string]any)
			if !ok {
				continue
			}
			startTime, ok := asEpoch(entry["startTime"])
			if !ok {
				continue
			}
			endTime, ok := asEpoch(entry["endTime"])
			if !ok {
				continue
			}
			recordings = append(recordings, Recording{
				StartTime: startTime,
				EndTime:   endTime,
				Type:      recordingType(entry),
			})
		}
	}
	return recordings
}

// sortedResultKeys returns the page keys matching prefix, ordered by their
// numeric suffix. Go maps iterate in random order but the device numbers its
// result entries, so this recovers the catalog's enumeration order.
func sortedResultKeys(page map[string]any, prefix string) []string {
	var keys []string
	for key := range page {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(strings.TrimPrefix(keys[i], prefix))
		b, berr := strconv.Atoi(strings.TrimPrefix(keys[j], prefix))
		if aerr == nil && berr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatInt(int64(s), 10), true
	default:
		return "", false
	}
}

func asEpoch(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func recordingType(entry map[string]any) string {
	// the firmware misspells the field; newer versions may not
	for _, field := range []string{"vedio_type", "video_type"} {
		if t, ok := asString(entry[field]); ok {
			return t
		}
	}
	return "unknown"
}

// Indexer enumerates the camera's recording catalog through a device querier,
// turning weakly-typed responses into typed recordings.
type Indexer struct {
	q device.Querier
}

func NewIndexer(q device.Querier) *Indexer {
	return &Indexer{q: q}
}

// ListDates returns the dates that have recordings, in catalog order.
func (ix *Indexer) ListDates(ctx context.Context) ([]string, error) {
	pages, err := ix.q.RecordingDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recording dates: %w", err)
	}
	return ExtractDates(pages), nil
}

// ListRecordings returns the recordings for one date, in catalog order.
func (ix *Indexer) ListRecordings(ctx context.Context, date string) ([]Recording, error) {
	pages, err := ix.q.Recordings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings for %s: %w", date, err)
	}
	return ExtractRecordings(pages), nil
}
