package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
	}
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			var removed int64
			if expiredOnly {
				removed, err = st.PruneCache(cmd.Context(), time.Duration(cfg.Registry.CacheTTLHours)*time.Hour)
			} else {
				removed, err = st.ClearCache(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "Only remove entries older than registry.cache_ttl_hours")
	return cmd
}
