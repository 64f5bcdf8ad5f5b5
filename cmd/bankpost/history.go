package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/cli"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the posted-transaction history",
		Long: `The posted history is what duplicate detection checks against. Seed it
from an export of your ledger so the first batches do not re-post
transactions that were entered by hand.`,
	}
	cmd.AddCommand(historyImportCmd())
	return cmd
}

// historyRow is the CSV import shape for previously posted transactions.
type historyRow struct {
	Date        string  `csv:"date"`
	Description string  `csv:"description"`
	CheckNumber string  `csv:"check_number"`
	Amount      float64 `csv:"amount"`
}

var historyDateLayouts = []string{"01/02/2006", "2006-01-02", "1/2/2006"}

func historyImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import posted transactions from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			var rows []historyRow
			if err := gocsv.UnmarshalFile(f, &rows); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			var posted []model.PostedTransaction
			var skipped int
			for i := range rows {
				row := &rows[i]
				date, ok := parseHistoryDate(row.Date)
				if !ok || row.Description == "" {
					skipped++
					continue
				}
				txn := model.RawTransaction{
					Date:        date,
					Description: row.Description,
					CheckNumber: row.CheckNumber,
					Amount:      row.Amount,
				}
				posted = append(posted, model.PostedTransaction{
					Hash:        txn.Hash(),
					Date:        date,
					Description: row.Description,
					CheckNumber: row.CheckNumber,
					Amount:      row.Amount,
				})
			}
			if len(posted) == 0 {
				return fmt.Errorf("no importable rows in %s", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SavePostedTransactions(ctx, posted); err != nil {
				return err
			}

			msg := fmt.Sprintf("imported %d posted transactions", len(posted))
			if skipped > 0 {
				msg += fmt.Sprintf(" (%d rows skipped)", skipped)
			}
			fmt.Println(cli.FormatSuccess(msg))
			return nil
		},
	}
}

func parseHistoryDate(cell string) (time.Time, bool) {
	for _, layout := range historyDateLayouts {
		if date, err := time.Parse(layout, cell); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
