package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisperwiz/internal/engine"
	"whisperwiz/internal/language"
)

func newModelsCommand() *cobra.Command {
	var showLanguages bool
	cmd := &cobra.Command{
		Use:         "models",
		Short:       "List accepted model identifiers",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(engine.KnownModels))
			for _, name := range engine.KnownModels {
				note := ""
				if name == engine.DefaultModel {
					note = "default"
				}
				rows = append(rows, []string{name, note})
			}
			fmt.Fprintln(out, renderTable("Models", columns("Model", "Note"), rows))

			if showLanguages {
				codes := language.Codes()
				langRows := make([][]string, 0, len(codes)+1)
				for _, code := range append([]string{language.Auto}, codes...) {
					langRows = append(langRows, []string{code, language.DisplayName(code)})
				}
				fmt.Fprintln(out, renderTable("Languages", columns("Code", "Language"), langRows))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLanguages, "languages", false, "Also list recognized language codes")
	return cmd
}
