package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Manage universes",
	Long: `Inspect and mutate universes on the candidate engine.

Subcommands:
  list        - List all universes
  create      - Create a universe
  rename      - Rename a universe
  add-ticker  - Add a ticker to a universe

Example:
  go run ./cmd/chronos universe list
  go run ./cmd/chronos universe create "KOSPI Momentum" --description "Large caps"
  go run ./cmd/chronos universe rename 3 "KOSPI Value"
  go run ./cmd/chronos universe add-ticker 3 AAPL`,
}

var (
	universeListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all universes",
		RunE:  listUniverses,
	}

	universeCreateCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Create a universe",
		Args:  cobra.ExactArgs(1),
		RunE:  createUniverse,
	}

	universeRenameCmd = &cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a universe",
		Args:  cobra.ExactArgs(2),
		RunE:  renameUniverse,
	}

	universeAddTickerCmd = &cobra.Command{
		Use:   "add-ticker [id] [ticker]",
		Short: "Add a ticker to a universe",
		Args:  cobra.ExactArgs(2),
		RunE:  addTicker,
	}
)

var createDescription string

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeListCmd)
	universeCmd.AddCommand(universeCreateCmd)
	universeCmd.AddCommand(universeRenameCmd)
	universeCmd.AddCommand(universeAddTickerCmd)

	universeCreateCmd.Flags().StringVar(&createDescription, "description", "", "universe description")
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func listUniverses(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := commandContext()
	defer cancel()

	universes, err := rt.engine.ListUniverses(ctx)
	if err != nil {
		return fmt.Errorf("list universes: %w", err)
	}

	if len(universes) == 0 {
		fmt.Println("No universes")
		return nil
	}

	fmt.Println("Universes:")
	for _, u := range universes {
		desc := ""
		if u.Description != nil {
			desc = *u.Description
		}
		fmt.Printf("  %4d  %-30s %s\n", u.ID, u.Name, desc)
	}
	return nil
}

func createUniverse(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := commandContext()
	defer cancel()

	created, err := rt.gateway.Create(ctx, args[0], createDescription)
	if err != nil {
		return fmt.Errorf("create universe: %w", err)
	}
	if created == nil {
		fmt.Println("⚠️  Universe name must not be blank")
		return nil
	}

	fmt.Printf("✅ Created universe #%d %q\n", created.ID, created.Name)
	return nil
}

func renameUniverse(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	universeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid universe id %q", args[0])
	}

	ctx, cancel := commandContext()
	defer cancel()

	updated, err := rt.gateway.Update(ctx, universeID, universe.NewChanges().SetName(args[1]))
	if err != nil {
		return fmt.Errorf("rename universe: %w", err)
	}
	if updated == nil {
		fmt.Println("⚠️  Nothing to update")
		return nil
	}

	fmt.Printf("✅ Universe #%d renamed to %q\n", updated.ID, updated.Name)
	return nil
}

func addTicker(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	universeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid universe id %q", args[0])
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := rt.gateway.AddTicker(ctx, universeID, args[1])
	if err != nil {
		var vErr *engine.ValidationError
		if errors.As(err, &vErr) {
			fmt.Printf("⚠️  Rejected: %s\n", vErr.Detail)
			return nil
		}
		return fmt.Errorf("add ticker: %w", err)
	}
	if result == nil {
		fmt.Println("⚠️  Ticker must not be blank")
		return nil
	}

	fmt.Printf("✅ Added %s to universe #%d\n", result.Ticker, universeID)
	return nil
}
