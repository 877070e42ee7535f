package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"medrag/internal/ingest"
	"medrag/internal/storage"

	"github.com/spf13/cobra"
)

var (
	ingestWorkers int
	ingestMigrate bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest pdf, txt and md files into the corpus locally",
	Long: `Extracts, sections and chunks every supported file in dir (default: the
configured data-in root) on a local worker pool, without Temporal. A run
summary is written under the data-out root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "concurrent documents (default MEDRAG_INGEST_WORKERS)")
	ingestCmd.Flags().BoolVar(&ingestMigrate, "migrate", true, "apply the schema before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := cfg.DataInRoot
	if len(args) == 1 {
		dir = args[0]
	}
	workers := ingestWorkers
	if workers <= 0 {
		workers = cfg.IngestWorkers
	}

	db, err := openDB(ctx, ingestMigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	in, err := ingest.New(storage.NewDocumentRepo(db), storage.NewChunkRepo(db), ingest.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Workers:      workers,
	})
	if err != nil {
		return err
	}
	summary, err := in.IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", dir, err)
	}
	path, err := ingest.WriteSummary(cfg.DataOutRoot, summary)
	if err != nil {
		return err
	}
	renderSummary(cmd.OutOrStdout(), summary)
	if total, err := storage.NewCorpusRepo(db).Count(ctx); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "corpus holds %d chunks\n", total)
	}
	fmt.Fprintln(cmd.OutOrStdout(), faint("summary: "+path))
	return nil
}

func renderSummary(w io.Writer, s ingest.Summary) {
	fmt.Fprintf(w, "%s %s (run %s)\n", heading("Ingested"), s.InputDir, s.RunID)
	names := make([]string, 0, len(s.PerDocument))
	for name := range s.PerDocument {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := s.PerDocument[name]
		if status == storage.DocStatusProcessed {
			status = good(status)
		} else {
			status = bad(status)
		}
		fmt.Fprintf(w, "  %-40s %s\n", name, status)
	}
	fmt.Fprintf(w, "%d files, %s, %s, %d chunks\n",
		s.Total, good(fmt.Sprintf("%d processed", s.Processed)), bad(fmt.Sprintf("%d failed", s.Failed)), s.Chunks)
}

func openDB(ctx context.Context, migrate bool) (*storage.DB, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(dbCtx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(dbCtx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
