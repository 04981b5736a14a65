package stream

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jacentio/tasks/internal/shard"
	"github.com/jacentio/tasks/search"
)

// Index is the write side of the search index.
// *search.Client satisfies it.
type Index interface {
	Upsert(ctx context.Context, id string, doc search.Document) error
	Delete(ctx context.Context, id string) error
}

// Projector applies change events to the search index.
//
// Events are spread over lanes by item id. A lane runs its events one at a
// time in delivery order, so two events for the same item are never applied
// out of order. At most concurrency lanes run at once.
type Projector struct {
	index       Index
	concurrency int
	logger      *slog.Logger
}

// NewProjector creates a Projector. A concurrency below 1 means sequential.
func NewProjector(index Index, concurrency int, logger *slog.Logger) *Projector {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		index:       index,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Process applies every event in batch and reports each outcome.
// A failing event never stops the others.
func (p *Projector) Process(ctx context.Context, batch []ChangeEvent) Report {
	return p.process(ctx, batch, p.logger)
}

func (p *Projector) process(ctx context.Context, batch []ChangeEvent, logger *slog.Logger) Report {
	outcomes := make([]Outcome, len(batch))

	lanes := make([][]int, p.concurrency)
	for i, ev := range batch {
		lane := shard.Lane(ev.Key.ItemID, p.concurrency)
		lanes[lane] = append(lanes[lane], i)
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, lane := range lanes {
		if len(lane) == 0 {
			continue
		}
		g.Go(func() error {
			for _, i := range lane {
				outcomes[i] = p.apply(ctx, batch[i], logger)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Outcomes: outcomes}
	logger.Info("projected batch",
		"events", len(batch),
		"applied", report.Count(Applied),
		"skipped", report.Count(Skipped),
		"failed", report.Count(Failed),
	)
	return report
}

// apply projects a single event.
func (p *Projector) apply(ctx context.Context, ev ChangeEvent, logger *slog.Logger) Outcome {
	out := Outcome{EventID: ev.ID, Key: ev.Key}

	if !ev.Key.Valid() {
		out.Status = Skipped
		out.Reason = "missing key field"
		logger.Info("cannot derive document id, skipping",
			"eventID", ev.ID,
			"owner", ev.Key.Owner,
			"itemId", ev.Key.ItemID,
		)
		return out
	}

	id := ev.Key.ItemID
	var err error
	switch ev.Kind {
	case Removed:
		logger.Debug("deleting document", "itemId", id)
		err = p.index.Delete(ctx, id)
	case Inserted, Modified:
		if ev.NewState == nil {
			out.Status = Skipped
			out.Reason = "missing new image"
			logger.Info("event has no new image, skipping",
				"eventID", ev.ID,
				"kind", ev.Kind.String(),
				"itemId", id,
			)
			return out
		}
		logger.Debug("indexing document", "itemId", id)
		err = p.index.Upsert(ctx, id, toDocument(ev))
	default:
		out.Status = Skipped
		out.Reason = "unknown event kind"
		logger.Info("unknown event kind, skipping", "eventID", ev.ID, "itemId", id)
		return out
	}

	if err != nil {
		out.Status = Failed
		out.Err = fmt.Errorf("%s %s: %w", ev.Kind, id, err)
		logger.Error("failed to project event",
			"eventID", ev.ID,
			"kind", ev.Kind.String(),
			"itemId", id,
			"error", err,
		)
		return out
	}
	out.Status = Applied
	return out
}

// toDocument builds the index document for an insert or modify event.
// The event key wins over key fields in the image.
func toDocument(ev ChangeEvent) search.Document {
	return search.Document{
		Owner:          ev.Key.Owner,
		ItemID:         ev.Key.ItemID,
		Title:          ev.NewState.Title,
		Description:    ev.NewState.Description,
		LastUpdateTime: ev.NewState.LastUpdateTime,
	}
}
