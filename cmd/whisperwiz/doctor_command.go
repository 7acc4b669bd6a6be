package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisperwiz/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external binaries and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputDir := ""
			if input != "" {
				if inputDir, err = absPath(input); err != nil {
					return fmt.Errorf("resolve input directory: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			problems := 0

			lines := renderSectionHeader("Configuration", colorize)
			configPath := ctx.configPath
			if !ctx.configExists {
				configPath += " (not found, defaults in use)"
			}
			lines = append(lines,
				renderStatusLine("Config file", statusInfo, configPath, colorize),
				renderStatusLine("Backend", statusInfo, cfg.Transcription.Backend, colorize),
				renderStatusLine("Model", statusInfo, cfg.Transcription.Model, colorize),
				renderStatusLine("Output mode", statusInfo, cfg.Transcription.OutputMode, colorize),
				renderStatusLine("Timestamps", statusInfo, yesNo(cfg.Transcription.IncludeTimestamps), colorize),
				renderStatusLine("Failure policy", statusInfo, cfg.Pipeline.FailurePolicy, colorize),
			)
			if path, ok := historyEnabled(cfg); ok {
				lines = append(lines, renderStatusLine("History", statusInfo, path, colorize))
			} else {
				lines = append(lines, renderStatusLine("History", statusWarn, "disabled", colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cfg)
			for _, s := range statuses {
				if !s.Available && !s.Optional {
					problems++
				}
			}
			lines = append(lines, dependencyLines(statuses, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			results := preflight.RunAll(cfg, inputDir)
			for _, r := range results {
				if !r.Passed {
					problems++
				}
			}
			lines = append(lines, preflightLines(results, colorize)...)

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Also check that this input folder is readable")
	return cmd
}
