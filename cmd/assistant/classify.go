package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xela07ax/transit-assistant/internal/infra"
	"github.com/xela07ax/transit-assistant/internal/intent"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <command>",
	Short: "Print the intent and extracted detail of a command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := infra.LoadConfig(configPath)
		if err != nil {
			return err
		}
		rules, err := cfg.Rules()
		if err != nil {
			return err
		}

		c := intent.NewClassifier(rules)
		command := strings.Join(args, " ")
		kind := c.Classify(command)

		fmt.Fprintf(cmd.OutOrStdout(), "intent: %s\ndetail: %s\n", kind, c.Extract(command, kind))
		return nil
	},
}
