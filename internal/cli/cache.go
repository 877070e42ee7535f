package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"medrag/internal/app"
	"medrag/internal/cache"
	"medrag/internal/storage"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the answer cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show [question]",
	Short: "Show the cached entry for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := app.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		hash := cache.QueryHash(strings.Join(args, " "))
		entry, err := rt.Cache.Entry(ctx, hash)
		if errors.Is(err, cache.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), warn("not cached"), faint(hash))
			return nil
		}
		if err != nil {
			return err
		}
		renderCacheEntry(cmd.OutOrStdout(), entry, time.Now())
		return nil
	},
}

var purgeExpired bool

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached answer in the configured backend",
	Long: `Deletes every cached answer. With --expired only postgres rows past their
expiry are removed; badger and redis expire entries on their own.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := app.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		if purgeExpired {
			if cfg.CacheBackend != app.CacheBackendPostgres {
				return fmt.Errorf("--expired needs the postgres cache backend, have %q", cfg.CacheBackend)
			}
			n, err := storage.NewCacheRepo(rt.DB).DeleteExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), good(fmt.Sprintf("removed %d expired entries", n)))
			return nil
		}
		if err := rt.Store.Purge(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), good("cache purged"), faint("backend="+cfg.CacheBackend))
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().BoolVar(&purgeExpired, "expired", false, "only remove expired postgres entries")
	cacheCmd.AddCommand(cacheShowCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
