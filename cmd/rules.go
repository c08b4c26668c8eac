package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neetprep/dedupe/internal/dedupe"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the business-rule configuration",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective rule set as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := dedupe.DefaultRules()
		if cfg.Engine.RulesPath != "" {
			r, err := dedupe.LoadRules(cfg.Engine.RulesPath)
			if err != nil {
				return err
			}
			rules = r
		}

		out, err := yaml.Marshal(rules)
		if err != nil {
			return eris.Wrap(err, "render rules")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesShowCmd)
	rootCmd.AddCommand(rulesCmd)
}
