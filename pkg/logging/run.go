package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TrackRun executes fn under a fresh run ID and logs its start and completion.
// The error returned by fn is passed through unchanged.
func TrackRun(ctx context.Context, reason string, fn func(ctx context.Context) error) error {
	ctx = WithRunID(ctx, uuid.New().String())

	start := time.Now()
	InfoContext(ctx, "gather started", "reason", reason)

	err := fn(ctx)

	duration := time.Since(start)
	if err != nil {
		// The caller decides how loudly a failed run is reported
		DebugContext(ctx, "gather failed",
			"reason", reason,
			"durationMs", duration.Milliseconds(),
			"error", err,
		)
		return err
	}

	InfoContext(ctx, "gather completed",
		"reason", reason,
		"durationMs", duration.Milliseconds(),
	)
	return nil
}
