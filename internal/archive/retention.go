package archive

import (
	"context"
	"strconv"

	"tapodump/internal/device"
)

// deleteAttempt is one firmware variant of the deletion call. Devices
// disagree on the signature, so known shapes are tried in order.
type deleteAttempt struct {
	method string
	params func(rec Recording) any
}

var deleteAttempts = []deleteAttempt{
	{
		method: "deleteRecording",
		params: func(rec Recording) any {
			return map[string]any{
				"playback": map[string]any{
					"delete_video": map[string]any{
						"channel":    0,
						"start_time": strconv.FormatInt(rec.StartTime, 10),
						"end_time":   strconv.FormatInt(rec.EndTime, 10),
					},
				},
			}
		},
	},
	{
		method: "do",
		params: func(rec Recording) any {
			return map[string]any{
				"playback": map[string]any{
					"delete": map[string]any{
						"start_time": rec.StartTime,
						"end_time":   rec.EndTime,
					},
				},
			}
		},
	},
}

// Retention removes recordings from the camera after a successful download.
// Deletion is best effort and experimental: whether a given firmware honors
// either call shape is unconfirmed, so nothing here ever surfaces an error.
type Retention struct {
	caller  device.FunctionCaller
	enabled bool
}

func NewRetention(caller device.FunctionCaller, enabled bool) *Retention {
	return &Retention{caller: caller, enabled: enabled}
}

// AttemptDelete tries each known deletion call shape until one succeeds.
// Returns false immediately when retention is disabled, and false without
// raising when every shape fails. Must only be called for recordings that
// downloaded successfully.
func (r *Retention) AttemptDelete(ctx context.Context, rec Recording) bool {
	if !r.enabled {
		return false
	}
	for _, attempt := range deleteAttempts {
		if err := r.caller.ExecuteFunction(ctx, attempt.method, attempt.params(rec)); err == nil {
			return true
		}
	}
	return false
}
