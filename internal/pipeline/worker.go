package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docrender/internal/parser"
	"github.com/dgallion1/docrender/internal/render"
)

// Sender delivers one rendered page to a room and returns the event ID.
type Sender interface {
	SendMessage(ctx context.Context, roomID, body, formattedBody string) (string, error)
}

// Worker processes a single delivery job: parse the uploaded file,
// render it page by page, and send each page to the target room.
type Worker struct {
	sender      Sender
	log         *slog.Logger
	pdfFallback bool
}

func NewWorker(sender Sender, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{sender: sender, log: log, pdfFallback: pdfFallback}
}

// Process runs the full delivery pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "room_id", job.RoomID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Render and deliver pages as they become ready.
	job.SetStatus(StatusDelivering, "delivering")
	send := func(ctx context.Context, plain, rich string) (string, error) {
		eventID, err := w.sendWithRetry(ctx, log, job.RoomID, plain, rich)
		if err != nil {
			return "", err
		}
		job.AddEventID(eventID)
		return eventID, nil
	}

	eventIDs, err := render.Paged(ctx, tree, job.PageSize(), send)
	if err != nil {
		log.Error("delivery failed", "pages_sent", len(eventIDs), "error", err)
		job.AddError(err.Error())
		if len(eventIDs) > 0 {
			job.SetStatus(StatusPartial, "delivering")
		} else {
			job.SetStatus(StatusFailed, "delivering")
		}
		return
	}

	log.Info("delivery complete", "pages", len(eventIDs))
	job.SetStatus(StatusCompleted, "done")
}

// sendWithRetry sends one page, retrying rate limits and transient
// failures with backoff.
func (w *Worker) sendWithRetry(ctx context.Context, log *slog.Logger, roomID, body, formattedBody string) (string, error) {
	var lastErr error
	for attempt := range MaxRetries {
		eventID, err := w.sender.SendMessage(ctx, roomID, body, formattedBody)
		if err == nil {
			return eventID, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
		wait := Backoff(attempt, err)
		log.Warn("retryable send error", "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("send failed after %d attempts: %w", MaxRetries, lastErr)
}
