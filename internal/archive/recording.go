package archive

import "time"

// Recording is one contiguous video segment stored on the camera's SD card,
// identified by its start/end epoch timestamps. Immutable once extracted from
// the catalog.
type Recording struct {
	StartTime int64
	EndTime   int64
	Type      string
}

func (r Recording) Duration() time.Duration {
	return time.Duration(r.EndTime-r.StartTime) * time.Second
}
