package detector

import (
	"time"

	"detectd/pkg/types"
)

// Status builds the /status payload.
func (d *Detector) Status() types.StatusResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return types.StatusResponse{
		State:           string(d.state),
		Backend:         d.backendName,
		GraphPath:       d.graphPath,
		Labels:          d.labels.Len(),
		Busy:            d.state == StateReady && d.busy(),
		InferencesTotal: d.inferences.Load(),
		FailuresTotal:   d.failures.Load(),
		LastError:       d.lastErr,
		UptimeSeconds:   int64(time.Since(d.startTime).Seconds()),
		ServerTimeUnix:  time.Now().Unix(),
	}
}
