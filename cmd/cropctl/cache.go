package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/jewelry-admin/internal/app"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and edit the local cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list KIND",
			Short: "Print the cached records of a kind as JSON",
			Args:  cobra.ExactArgs(1),
			RunE:  runCacheList,
		},
		&cobra.Command{
			Use:   "rm KIND ID",
			Short: "Remove one cached record",
			Args:  cobra.ExactArgs(2),
			RunE:  runCacheRemove,
		},
		&cobra.Command{
			Use:   "clear KIND",
			Short: "Drop every cached record of a kind",
			Args:  cobra.ExactArgs(1),
			RunE:  runCacheClear,
		},
	)
	return cmd
}

func runCacheList(cmd *cobra.Command, args []string) error {
	kind, err := enums.ParseEntityKind(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app.App) error {
		records := a.Cache.Load(cmd.Context(), localcache.KeyFor(kind))
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	})
}

func runCacheRemove(cmd *cobra.Command, args []string) error {
	kind, err := enums.ParseEntityKind(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app.App) error {
		if err := a.Cache.Remove(cmd.Context(), localcache.KeyFor(kind), args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", kind, args[1])
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	kind, err := enums.ParseEntityKind(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app.App) error {
		if err := a.Cache.DeleteKey(cmd.Context(), localcache.KeyFor(kind)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", localcache.KeyFor(kind))
		return nil
	})
}
