package typing

import (
	"context"
	"strings"
	"time"
)

// progressInterval is the fixed sub-interval between typing_progress signals.
const progressInterval = 500 * time.Millisecond

// Event is one timing signal produced while simulating a typing delay. The
// engine only decides timing; what the signals mean on the wire is up to the
// caller.
type Event struct {
	Kind      EventKind
	Progress  float64 // fraction of the total delay elapsed, for progress events
	Remaining float64 // seconds left, for progress events
	Chunk     string  // the chunk just "typed", for chunk events
	Text      string  // cumulative text assembled so far, for chunk events
	Final     bool    // set on the last chunk event
}

// EventKind discriminates typing signals.
type EventKind string

const (
	EventStart    EventKind = "typing_start"
	EventProgress EventKind = "typing_progress"
	EventStop     EventKind = "typing_stop"
	EventChunk    EventKind = "chunk"
)

// EmitFunc consumes typing signals. Returning an error aborts the sequence.
type EmitFunc func(Event) error

// RunProgress sleeps through a whole-message delay of total seconds, emitting
// a start signal, periodic progress signals every half second, and a stop
// signal. Cancelling ctx aborts the sequence; no signals are emitted after
// cancellation.
func (e *Engine) RunProgress(ctx context.Context, total float64, emit EmitFunc) error {
	if err := emit(Event{Kind: EventStart}); err != nil {
		return err
	}

	deadline := time.Duration(total * float64(time.Second))
	started := time.Now()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	done := time.NewTimer(deadline)
	defer done.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done.C:
			return emit(Event{Kind: EventStop, Progress: 1, Remaining: 0})
		case <-ticker.C:
			elapsed := time.Since(started).Seconds()
			progress := 1.0
			if total > 0 {
				progress = elapsed / total
			}
			if progress > 1 {
				progress = 1
			}
			remaining := total - elapsed
			if remaining < 0 {
				remaining = 0
			}
			if err := emit(Event{Kind: EventProgress, Progress: progress, Remaining: remaining}); err != nil {
				return err
			}
		}
	}
}

// StreamChunks sleeps through each chunk's delay in order, emitting one chunk
// signal per chunk carrying the cumulative text assembled so far. The split
// strategy decides how chunks rejoin: sentence and word chunks get a joining
// space, character chunks concatenate directly so the original text survives.
// Delivery is strictly sequential within the message and aborts cleanly on
// ctx cancellation.
func (e *Engine) StreamChunks(ctx context.Context, chunks []Chunk, strategy ChunkStrategy, emit EmitFunc) error {
	var assembled strings.Builder

	for i, chunk := range chunks {
		timer := time.NewTimer(time.Duration(chunk.Delay * float64(time.Second)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if assembled.Len() > 0 && strategy != ChunkByCharacter {
			assembled.WriteByte(' ')
		}
		assembled.WriteString(chunk.Text)

		if err := emit(Event{
			Kind:  EventChunk,
			Chunk: chunk.Text,
			Text:  assembled.String(),
			Final: i == len(chunks)-1,
		}); err != nil {
			return err
		}
	}

	return nil
}
