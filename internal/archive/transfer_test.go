package archive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapodump/internal/device"
)

func decideForTest(t *testing.T, rec Recording) Decision {
	t.Helper()
	decision, err := Decide(rec, t.TempDir())
	require.NoError(t, err)
	require.False(t, decision.Skip)
	return decision
}

func TestTransferSuccessRenamesPartFile(t *testing.T) {
	rec := Recording{StartTime: 1721829154, EndTime: 1721829184}
	decision := decideForTest(t, rec)

	streamer := &fakeStreamer{data: []byte("video bytes")}
	executor := NewExecutor(streamer, 0, &bytes.Buffer{})

	outcome := executor.Transfer(context.Background(), rec, decision, 42)
	assert.Equal(t, StatusSucceeded, outcome.Status)

	content, err := os.ReadFile(decision.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("video bytes"), content)

	_, err = os.Stat(decision.Path + ".part")
	assert.True(t, os.IsNotExist(err), "part file must not remain after success")

	require.Len(t, streamer.requests, 1)
	req := streamer.requests[0]
	assert.Equal(t, rec.StartTime, req.StartTime)
	assert.Equal(t, rec.EndTime, req.EndTime)
	assert.Equal(t, int64(42), req.TimeCorrection)
	assert.Equal(t, DefaultWindowSize, req.WindowSize)
}

func TestTransferFailureLeavesNoArtifact(t *testing.T) {
	rec := Recording{StartTime: 1721829154, EndTime: 1721829184}
	decision := decideForTest(t, rec)

	streamer := &fakeStreamer{
		failFor: map[int64]error{rec.StartTime: errors.New("stream reset by camera")},
	}
	executor := NewExecutor(streamer, 0, &bytes.Buffer{})

	outcome := executor.Transfer(context.Background(), rec, decision, 0)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Reason, "stream reset")

	_, err := os.Stat(decision.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(decision.Path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestTransferProgressThrottled(t *testing.T) {
	rec := Recording{StartTime: 1721829154, EndTime: 1721829184}
	decision := decideForTest(t, rec)

	// one event per permille: far more events than allowed report lines
	var events []device.ProgressEvent
	for i := int64(1); i <= 1000; i++ {
		events = append(events, device.ProgressEvent{
			CurrentAction: "Downloading", Progress: i, Total: 1000,
		})
	}

	var out bytes.Buffer
	executor := NewExecutor(&fakeStreamer{events: events}, 0, &out)

	outcome := executor.Transfer(context.Background(), rec, decision, 0)
	require.Equal(t, StatusSucceeded, outcome.Status)

	lines := strings.Count(out.String(), "%")
	assert.LessOrEqual(t, lines, 20, "at most 20 progress reports per transfer")
	assert.Greater(t, lines, 0)
	assert.Contains(t, out.String(), "100%")
}

func TestTransferIndeterminateReportsActionTransitions(t *testing.T) {
	rec := Recording{StartTime: 1721829154, EndTime: 1721829184}
	decision := decideForTest(t, rec)

	events := []device.ProgressEvent{
		{CurrentAction: "Connecting"},
		{CurrentAction: "Connecting"},
		{CurrentAction: "Negotiating"},
		{CurrentAction: "Negotiating"},
	}

	var out bytes.Buffer
	executor := NewExecutor(&fakeStreamer{events: events}, 0, &out)

	outcome := executor.Transfer(context.Background(), rec, decision, 0)
	require.Equal(t, StatusSucceeded, outcome.Status)

	assert.Equal(t, 1, strings.Count(out.String(), "Connecting"))
	assert.Equal(t, 1, strings.Count(out.String(), "Negotiating"))
	assert.NotContains(t, out.String(), "%")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
