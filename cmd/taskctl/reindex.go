package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jacentio/tasks/internal/bootstrap"
	"github.com/jacentio/tasks/store"
	"github.com/jacentio/tasks/stream"
)

var (
	reindexBatchSize   int
	reindexConcurrency int
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Project every stored item into the search index",
	Long: `Scan the task table and upsert every item into the search index.

Use it to backfill a new index or to repair documents whose change events
failed to project. Items are fed through the same projector as the stream
consumer, in batches.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		items, err := bootstrap.NewStore(e.aws, e.cfg)
		if err != nil {
			return err
		}
		index, err := bootstrap.NewSearch(e.aws, e.cfg)
		if err != nil {
			return err
		}

		concurrency := reindexConcurrency
		if concurrency < 1 {
			concurrency = e.cfg.ProjectorConcurrency
		}
		projector := stream.NewProjector(index, concurrency, e.logger)
		return reindex(cmd.Context(), items, projector, reindexBatchSize, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().IntVar(&reindexBatchSize, "batch-size", 100, "Items projected per batch")
	reindexCmd.Flags().IntVar(&reindexConcurrency, "concurrency", 0, "Parallel projection lanes (defaults to PROJECTOR_CONCURRENCY)")
}

// scanner walks every stored item. *store.Store satisfies it.
type scanner interface {
	Scan(ctx context.Context, fn func(store.Item) error) error
}

type reindexStats struct {
	Applied int
	Skipped int
	Failed  int
}

// reindex feeds every scanned item to p as an insert event. Failed items do
// not stop the scan; they are reported at the end.
func reindex(ctx context.Context, items scanner, p *stream.Projector, batchSize int, out io.Writer) error {
	if batchSize < 1 {
		batchSize = 1
	}

	var stats reindexStats
	var failed []error
	batch := make([]stream.ChangeEvent, 0, batchSize)
	seq := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		report := p.Process(ctx, batch)
		stats.Applied += report.Count(stream.Applied)
		stats.Skipped += report.Count(stream.Skipped)
		stats.Failed += report.Count(stream.Failed)
		for _, o := range report.Failed() {
			failed = append(failed, o.Err)
		}
		batch = batch[:0]
	}

	err := items.Scan(ctx, func(item store.Item) error {
		seq++
		it := item
		batch = append(batch, stream.ChangeEvent{
			ID:       fmt.Sprintf("reindex-%d", seq),
			Kind:     stream.Inserted,
			Key:      stream.Key{Owner: item.Owner, ItemID: item.ItemID},
			NewState: &it,
		})
		if len(batch) == batchSize {
			flush()
		}
		return ctx.Err()
	})
	if err != nil {
		return fmt.Errorf("scan items: %w", err)
	}
	flush()

	fmt.Fprintf(out, "applied=%d skipped=%d failed=%d\n", stats.Applied, stats.Skipped, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d items failed to project: %w", stats.Failed, failed[0])
	}
	return nil
}
