package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved generations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tTYPE\tTITLE")
			for _, it := range items {
				kind := it.Type
				if it.Subtype != "" && it.Subtype != generate.SubtypeDefault {
					kind += "/" + it.Subtype
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04"), kind, it.Title)
			}
			return w.Flush()
		},
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := generate.OutputFromHistory(item)
			if err != nil {
				return err
			}
			payload := export.Text(out.FinalPromptText)
			if asJSON {
				if payload, err = export.JSON(out); err != nil {
					return err
				}
			}
			return emit(cmd, payload, "")
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print the whole saved output as JSON")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one saved generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	}

	clearAll := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Clear(cmd.Context())
		},
	}

	cmd.AddCommand(list, show, del, clearAll)
	return cmd
}
