package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"steamdrop/internal/appid"
	"steamdrop/internal/classify"
	"steamdrop/internal/config"
	"steamdrop/internal/library"
	"steamdrop/internal/shelf"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>...",
		Short: "Copy scripts and manifests from files or folders into Steam",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShelf(func(cfg *config.Config, s *shelf.Shelf) error {
				result := s.Import(cmd.Context(), args)
				out := cmd.OutOrStdout()
				dirs := s.Dirs()
				fmt.Fprintf(out, "Imported %d scripts and %d manifests\n",
					result.Count(classify.KindScript), result.Count(classify.KindManifest))
				fmt.Fprintf(out, "Scripts:   %s\nManifests: %s\n", dirs.ScriptDir, dirs.ManifestDir)
				if len(result.Skipped) > 0 {
					fmt.Fprintf(out, "Skipped %d files already in place\n", len(result.Skipped))
				}
				for _, fe := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  failed: %s\n", fe.Error())
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d files could not be imported", len(result.Errors))
				}
				return nil
			})
		},
	}
}

type entryJSON struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Resolved bool     `json:"resolved"`
	Scripts  []string `json:"scripts"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter string
	var pendingOnly bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed apps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShelf(func(_ *config.Config, s *shelf.Shelf) error {
				entries := s.Search(filter)
				if pendingOnly {
					entries = pendingEntries(entries)
				}
				out := cmd.OutOrStdout()

				if asJSON {
					payload := make([]entryJSON, 0, len(entries))
					for _, e := range entries {
						payload = append(payload, entryJSON{ID: e.ID, Name: e.Name, Resolved: e.Resolved(), Scripts: e.ScriptPaths})
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(payload)
				}

				if len(entries) == 0 {
					fmt.Fprintln(out, "No apps installed")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.ID, e.Name, yesNo(e.Resolved()), strconv.Itoa(len(e.ScriptPaths))})
				}
				fmt.Fprintln(out, renderTable(out, []string{"App ID", "Name", "Resolved", "Scripts"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show apps whose name or id contains this text")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show apps still waiting for a name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func pendingEntries(entries []library.Entry) []library.Entry {
	var out []library.Entry
	for _, e := range entries {
		if !e.Resolved() {
			out = append(out, e)
		}
	}
	return out
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <app-id>",
		Short: "Show the files installed for an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withShelf(func(_ *config.Config, s *shelf.Shelf) error {
				entry, ok := s.Get(id)
				if !ok {
					return fmt.Errorf("%s: %w", id, library.ErrUnknownApp)
				}
				manifests, err := s.MatchingManifests(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "App ID:  %s\n", entry.ID)
				fmt.Fprintf(out, "Name:    %s\n", entry.Name)
				fmt.Fprintln(out, "Scripts:")
				for _, p := range entry.ScriptPaths {
					_, rule := appid.ExtractFile(p)
					fmt.Fprintf(out, "  %s (matched by %s)\n", p, rule)
				}
				fmt.Fprintln(out, "Manifests:")
				if len(manifests) == 0 {
					fmt.Fprintln(out, "  (none)")
				}
				for _, p := range manifests {
					fmt.Fprintf(out, "  %s\n", p)
				}
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var withManifests bool

	cmd := &cobra.Command{
		Use:   "remove <app-id>",
		Short: "Delete the scripts (and optionally manifests) of an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withShelf(func(_ *config.Config, s *shelf.Shelf) error {
				removed, err := s.Remove(id, withManifests)
				var partial *library.PartialDeleteError
				if err != nil && !errors.As(err, &partial) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files for %s\n", removed, id)
				if partial != nil {
					for _, fe := range partial.Failed {
						fmt.Fprintf(cmd.ErrOrStderr(), "  failed: %s\n", fe.Error())
					}
					return fmt.Errorf("%d files could not be removed", len(partial.Failed))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&withManifests, "manifests", "m", false, "Also delete matching depot manifests")
	return cmd
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "resolve <app-id>",
		Short: "Look up the display name of an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if _, err := strconv.ParseUint(id, 10, 64); err != nil {
				return fmt.Errorf("app id must be numeric: %q", id)
			}
			return ctx.withShelf(func(_ *config.Config, s *shelf.Shelf) error {
				var name string
				if force {
					name = s.ForceResolve(cmd.Context(), id)
				} else {
					name = s.Resolve(cmd.Context(), id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Retry even if earlier lookups failed")
	return cmd
}

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Resolve names for apps still showing a placeholder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShelf(func(_ *config.Config, s *shelf.Shelf) error {
				total := 0
				for {
					updated := s.Refresher().RunOnce(cmd.Context())
					total += updated
					if !all || updated == 0 || cmd.Context().Err() != nil {
						break
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Resolved %d names; %d still pending\n", total, len(s.Placeholders()))
				return cmd.Context().Err()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Keep going until no batch resolves a new name")
	return cmd
}
