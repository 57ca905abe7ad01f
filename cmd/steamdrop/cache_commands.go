package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"steamdrop/internal/namecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and edit the app name cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

// withCache opens only the name cache; cache commands never touch the library.
func (c *commandContext) withCache(fn func(namecache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger()
	if err != nil {
		return err
	}
	store, err := namecache.Open(cfg.NameCache.Backend, cfg.NameCache.Path, logger)
	if err != nil {
		return fmt.Errorf("open name cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var negativeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached app names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store namecache.Store) error {
				out := cmd.OutOrStdout()
				var rows [][]string
				for _, entry := range store.List() {
					if negativeOnly && !entry.Negative() {
						continue
					}
					name := entry.Name
					if entry.Negative() {
						name = "(not found)"
					}
					rows = append(rows, []string{entry.ID, name})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "Name cache is empty")
					return nil
				}
				fmt.Fprintln(out, renderTable(out, []string{"App ID", "Name"}, rows,
					[]columnAlignment{alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&negativeOnly, "negative", false, "Only list ids whose lookups failed")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <app-id>",
		Short: "Forget the cached name so the next lookup hits the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withCache(func(store namecache.Store) error {
				if err := store.Remove(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the name cache\n", id)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(store namecache.Store) error {
				count := store.Count()
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached names\n", count)
				return nil
			})
		},
	}
}
