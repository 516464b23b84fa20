package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/config"
	"github.com/bix-dev/bixdash/internal/model"
)

func newInitCommand(_ *rootOptions) *cobra.Command {
	var sample bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a bixdash workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, sample); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized bixdash workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&sample, "sample", true, "write sample transactions.json")

	return cmd
}

// sampleTransactions seeds a new workspace so `serve` and `dashboard`
// have something to show.
var sampleTransactions = []model.Transaction{
	{Date: 1682698259192, Amount: "5565", Type: model.TypeDeposit, Currency: model.CurrencyBRL, Account: "Baker Hughes", Industry: "Oil and Gas Equipment", State: "TX"},
	{Date: 1673216606378, Amount: "3716", Type: model.TypeWithdraw, Currency: model.CurrencyBRL, Account: "General Mills", Industry: "Food Consumer Products", State: "MN"},
	{Date: 1675818799428, Amount: "12050", Type: model.TypeDeposit, Currency: model.CurrencyBRL, Account: "Hewlett Packard Enterprise", Industry: "Computers, Office Equipment", State: "CA"},
	{Date: 1676218339108, Amount: "980", Type: model.TypeWithdraw, Currency: model.CurrencyBRL, Account: "Baker Hughes", Industry: "Oil and Gas Equipment", State: "TX"},
}

func runInit(dir string, sample bool) error {
	if err := os.MkdirAll(filepath.Join(dir, ".bixdash"), 0o755); err != nil {
		return fmt.Errorf("creating directory .bixdash: %w", err)
	}

	// Write bixdash.yaml unless one exists.
	cfgPath := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(cfgPath, config.Default()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	// Write sample transactions.
	if sample {
		txPath := filepath.Join(dir, config.Default().Server.File)
		if _, err := os.Stat(txPath); os.IsNotExist(err) {
			data, err := json.MarshalIndent(sampleTransactions, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding sample transactions: %w", err)
			}
			if err := os.WriteFile(txPath, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("writing sample transactions: %w", err)
			}
		}
	}

	// Write .gitignore.
	gitignore := ".bixdash/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
