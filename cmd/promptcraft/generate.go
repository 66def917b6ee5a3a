package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sant0-9/promptcraft/internal/export"
	"github.com/sant0-9/promptcraft/internal/generate"
	"github.com/sant0-9/promptcraft/internal/llm"
)

func generateCmd() *cobra.Command {
	var (
		subtype string
		set     []string
		asJSON  bool
		noSave  bool
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "generate <task>",
		Short: "Run one guided generation",
		Long: `Send a guided request to the configured model and print the final prompt.

Tasks: image, video, research, outline, music. Field values are given with
--set key=value; image fields take a local file path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			task := generate.Task(strings.ToUpper(args[0]))
			if !task.Valid() {
				return fmt.Errorf("unknown task %q", args[0])
			}
			if subtype == "" {
				subtype = generate.DefaultSubtype(task)
			}
			for _, s := range task.Subtypes() {
				if strings.EqualFold(s, subtype) {
					subtype = s
				}
			}

			inputs := generate.FieldDefaults(task, subtype)
			overrides, err := parseSet(set)
			if err != nil {
				return err
			}
			for k, v := range overrides {
				inputs[k] = v
			}

			req := &generate.Request{
				Task:     task,
				Subtype:  subtype,
				Inputs:   inputs,
				Language: cfg.Settings.Language,
			}
			if err := req.Validate(); err != nil {
				return err
			}
			if err := req.CheckProvider(cfg.Provider); err != nil {
				return err
			}

			provider, err := llm.NewProvider(cfg)
			if err != nil {
				return credentialHint(err)
			}
			svc := generate.NewService(provider, cfg.Model)
			svc.SetRepair(cfg.RepairJSON)
			svc.SetProgressCallback(func(p generate.Progress) {
				if p.Stage == generate.StageDone {
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", p.StageIndex+1, p.TotalStages, p.Stage)
			})
			if !noSave {
				store, err := openHistory()
				if err != nil {
					log.Warn().Err(err).Msg("history unavailable")
				} else {
					defer store.Close()
					svc.SetHistory(store)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out, err := svc.Generate(ctx, req)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return errors.New("cancelled")
				}
				return credentialHint(err)
			}

			payload := export.Text(out.FinalPromptText)
			if asJSON {
				if payload, err = export.JSON(out); err != nil {
					return err
				}
			}
			return emit(cmd, payload, outPath)
		},
	}

	cmd.Flags().StringVar(&subtype, "subtype", "", "Task mode (image: Generate, Analyze, Compose; video: Prompt, Img2Video, Extend)")
	cmd.Flags().StringArrayVar(&set, "set", nil, "Field value as key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the whole output as JSON")
	cmd.Flags().BoolVar(&noSave, "no-history", false, "Do not save the result to history")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// credentialHint adds setup instructions to a missing-key error.
func credentialHint(err error) error {
	if generate.Classify(err) == generate.OutcomeMissingCredential {
		return fmt.Errorf("%w: run promptcraft to add one, or set PROMPTCRAFT_API_KEY", err)
	}
	return err
}
