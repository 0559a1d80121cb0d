package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/metrics"
	"github.com/kailas-cloud/ondcsearch/internal/transport/catalog"
	"github.com/kailas-cloud/ondcsearch/internal/usecase/ingest"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		file        string
		recreate    bool
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed catalog products from a JSON export and write them to the vector index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Vector.IsEnabled() {
				return errors.New("vector search is disabled in config")
			}

			body, err := os.ReadFile(filepath.Clean(file))
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			items, malformed, err := catalog.ParseItems(body)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			metrics.RegisterEmbeddingMetrics()
			metrics.RegisterSearchMetrics()

			ctx := cmd.Context()
			store, err := a.connectStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// Documents are embedded without the query instruction.
			svc := ingest.New(
				newVectorRepo(store, a.cfg),
				buildEmbedder(a.cfg.Embedding, store, a.logger),
				ingest.Config{BatchSize: batchSize, Concurrency: concurrency, Recreate: recreate},
				a.logger,
			)

			rep, err := svc.Ingest(ctx, items)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			a.logger.Info("Ingestion finished",
				zap.String("file", file),
				zap.Int("malformed", malformed),
				zap.Int("read", rep.Read),
				zap.Int("skipped", rep.Skipped),
				zap.Int("written", rep.Written),
				zap.Int("failed", rep.Failed),
				zap.Bool("index_created", rep.IndexCreated),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "written %d, skipped %d, failed %d\n", rep.Written, rep.Skipped+malformed, rep.Failed)
			if rep.Failed > 0 {
				return fmt.Errorf("%d products failed to ingest", rep.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog export: a JSON array or a search response envelope")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop and recreate the index first")
	cmd.Flags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "products per embedding call")
	cmd.Flags().IntVar(&concurrency, "concurrency", ingest.DefaultConcurrency, "parallel embedding batches")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
