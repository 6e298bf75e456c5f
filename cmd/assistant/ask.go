package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [command]",
	Short: "Process one command, or each line of stdin",
	Long: `Process a command the same way the HTTP API does and print the reply.

Examples:
  assistant ask "navigate to Brussels"
  printf 'help\nfind coffee shops\n' | assistant ask`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	defer a.close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		resp, err := a.processor.ProcessCommand(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp)
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		resp, err := a.processor.ProcessCommand(ctx, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, resp)
	}
	return scanner.Err()
}
