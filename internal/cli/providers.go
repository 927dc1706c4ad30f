package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtran/internal/translate"
)

func (a *app) providersCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "providers",
		Short:       "List translation providers and their defaults",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderProviders(translate.Providers()))
			return nil
		},
	}
}

func renderProviders(infos []translate.ProviderInfo) string {
	rows := make([][]string, 0, len(infos))
	for _, p := range infos {
		key := "-"
		if p.KeyEnv != "" {
			key = p.KeyEnv
			if os.Getenv(p.KeyEnv) != "" {
				key += " (set)"
			}
		}
		delay := "-"
		if p.Delay > 0 {
			delay = p.Delay.String()
		}
		rows = append(rows, []string{
			string(p.Name),
			p.Description,
			p.DefaultLanguage,
			strconv.Itoa(p.BatchSize),
			delay,
			key,
		})
	}
	return renderTable(
		[]string{"Provider", "Description", "Language", "Batch", "Delay", "API key"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
