package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solatis/bulkmsg/internal/customers"
	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate FILTER.json",
	Short: "Run a filter against the customer feed and print the matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().String("feed-url", "", "customer CSV feed URL")
	evaluateCmd.Flags().String("feed-path", "", "customer CSV or XLSX file")
	evaluateCmd.Flags().String("search", "", "search text over name, email and phone")
	evaluateCmd.Flags().Bool("ids", false, "print matching customer ids")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read filter: %w", err)
	}
	var node types.Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	src, err := feedSource(cfg.Feed)
	if err != nil {
		return err
	}
	store := customers.NewStore(logger)
	if _, err := store.Load(ctx, src); err != nil {
		return err
	}

	prog := filter.Compile(node)
	search, _ := cmd.Flags().GetString("search")
	found := filter.Apply(store.All(), prog, filter.Query{Search: search})

	out := cmd.OutOrStdout()
	for _, p := range prog.Problems() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", p)
	}
	fmt.Fprintf(out, "%d of %d customers match\n", len(found), store.Len())
	if showIDs, _ := cmd.Flags().GetBool("ids"); showIDs {
		fmt.Fprintln(out, strings.Join(filter.IDs(found), "\n"))
	}
	return nil
}
