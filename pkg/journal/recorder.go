package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/morezero/host-bridge/pkg/bridge"
)

const recorderLogPrefix = "journal:recorder"

// payloadLimit bounds stored payloads; oversized ones are truncated.
const payloadLimit = 4096

// writeTimeout caps how long a single journal write may block the tick.
const writeTimeout = 2 * time.Second

// Recorder adapts a Journal to the dispatch observer hook. Failed writes are
// logged and dropped; journaling never fails a command.
type Recorder struct {
	journal Journal
}

// NewRecorder creates a Recorder writing to the given journal.
func NewRecorder(journal Journal) *Recorder {
	return &Recorder{journal: journal}
}

// CommandDispatched records one dispatch.
func (r *Recorder) CommandDispatched(ctx context.Context, rec bridge.DispatchRecord) {
	payload := rec.Payload
	if len(payload) > payloadLimit {
		payload = payload[:payloadLimit]
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := r.journal.Record(ctx, Record{
		ID:       rec.ID,
		Command:  rec.Command,
		Payload:  payload,
		Status:   rec.Status,
		Tick:     rec.Tick,
		Duration: rec.Duration,
		At:       rec.At,
	})
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to journal command %s: %v", recorderLogPrefix, rec.ID, err))
	}
}
