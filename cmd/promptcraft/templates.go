package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sant0-9/promptcraft/internal/catalog"
	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/prompts"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse the template library",
	}

	var category, search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List templates, favourites first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog()
			if err != nil {
				return err
			}

			var templates []*catalog.Template
			switch {
			case category != "":
				c := catalog.Category(strings.ToUpper(category))
				if !isCategory(c) {
					return fmt.Errorf("unknown category %q", category)
				}
				templates = cat.Filter(c, search)
			case search != "":
				templates = cat.Search(search)
			default:
				templates = cat.All()
			}
			templates = catalog.SortFavoritesFirst(templates, cfg.IsFavorite)

			lang := cfg.Settings.Language
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tTITLE")
			for _, t := range templates {
				title := t.DisplayTitle(lang)
				if cfg.IsFavorite(t.ID) {
					title = "★ " + title
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Category, title)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&category, "category", "", "Only this category (IMAGE, VIDEO, WRITING, MARKETING, DATA)")
	list.Flags().StringVar(&search, "search", "", "Match titles and descriptions")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a template as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			t := cat.Get(args[0])
			if t == nil {
				return fmt.Errorf("template %q not found", args[0])
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(t); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func isCategory(c catalog.Category) bool {
	for _, x := range catalog.Categories() {
		if x == c {
			return true
		}
	}
	return false
}

// expansion is the JSON output of expand.
type expansion struct {
	Template string            `json:"template"`
	Inputs   map[string]string `json:"inputs"`
	Prompt   string            `json:"prompt"`
	Sections prompts.Document  `json:"sections,omitempty"`
}

func expandCmd() *cobra.Command {
	var (
		set     []string
		asJSON  bool
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "expand <id>",
		Short: "Fill a template locally and print the prompt",
		Long: `Fill a template with its default values, overridden by --set, and print
the prompt. Nothing is sent to a model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			t := cat.Get(args[0])
			if t == nil {
				return fmt.Errorf("template %q not found", args[0])
			}

			overrides, err := parseSet(set)
			if err != nil {
				return err
			}
			values := catalog.Defaults(t)
			for k, v := range overrides {
				if _, ok := t.Variable(k); !ok {
					return fmt.Errorf("template %q has no variable %q", t.ID, k)
				}
				values[k] = v
			}

			res := generate.FromTemplate(t, values)
			payload := export.Text(res.Text)
			if asJSON {
				payload, err = export.JSON(expansion{
					Template: t.ID,
					Inputs:   values,
					Prompt:   res.Text,
					Sections: res.Document,
				})
				if err != nil {
					return err
				}
			}
			return emit(cmd, payload, outPath)
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Variable value as key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON with the parsed sections")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Split ***LABEL*** sections of a prompt into JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			payload, err := export.JSON(prompts.ParseSections(string(data)))
			if err != nil {
				return err
			}
			return emit(cmd, payload, "")
		},
	}
}

// emit writes p to path when set, otherwise to the command's stdout.
func emit(cmd *cobra.Command, p export.Payload, path string) error {
	if path != "" {
		written, err := export.WriteFile(path, p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "wrote", written)
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), p.Body)
	return err
}
