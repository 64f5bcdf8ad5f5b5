package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/classify"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/cli"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/config"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/engine"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [files...]",
		Short: "Process bank statements into posting documents",
		Long: `Extract, classify, and route transactions from one or more bank
statement files. PDF statements go through OCR when they carry no text
layer; spreadsheets and OFX downloads are read directly.

Examples:
  # One scanned statement
  bankpost process ~/statements/july.pdf

  # A whole quarter, written to a review file and recorded as posted
  bankpost process ~/statements/2024-q3/*.pdf --output q3.csv --post`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().StringP("output", "o", "", "write routed entries to a CSV file")
	cmd.Flags().Bool("post", false, "record clean entries in the posted history")
	cmd.Flags().Int("workers", 0, "concurrent files (default 4)")

	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Process OFX/QFX downloads into posting documents",
		Long: `Process restricted to OFX and QFX downloads. Signed amounts and check
numbers come straight from the download, so no OCR or totals repair is
involved; classification and routing work the same as for statements.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				switch strings.ToLower(filepath.Ext(arg)) {
				case ".ofx", ".qfx":
				default:
					return common.NewUserError(fmt.Sprintf("%s is not an OFX or QFX file", arg), nil)
				}
			}
			return runProcess(cmd, args)
		},
	}

	cmd.Flags().StringP("output", "o", "", "write routed entries to a CSV file")
	cmd.Flags().Bool("post", false, "record clean entries in the posted history")
	cmd.Flags().Int("workers", 0, "concurrent files (default 4)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	post, _ := cmd.Flags().GetBool("post")
	workers, _ := cmd.Flags().GetInt("workers")

	files, err := expandFileArgs(args)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	extractor, err := initExtractor()
	if err != nil {
		return err
	}

	templates, err := config.LoadTemplates()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Processing statements"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	processor := engine.NewWithConfig(store, extractor, classify.New(store), templates, engine.Config{
		Workers:    workers,
		OnFileDone: func(string) { _ = bar.Add(1) },
	})

	batch, err := processor.ProcessFiles(ctx, files)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Println(cli.RenderBatchSummary(batch))

	if output != "" {
		if err := writeEntriesCSV(output, batch); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Wrote %d entries to %s", len(batch.Entries), output)))
	}

	if post {
		clean := cleanEntries(batch)
		if err := processor.RecordPosted(ctx, clean); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %d entries as posted", len(clean))))
	}

	return nil
}

// cleanEntries filters out entries that need review or were flagged as
// duplicates; those are not posted until a human clears them.
func cleanEntries(batch *model.BatchResult) []model.RoutedEntry {
	flagged := make(map[int]bool, len(batch.Duplicates))
	for _, d := range batch.Duplicates {
		flagged[d.Index] = true
	}

	var clean []model.RoutedEntry
	for i := range batch.Entries {
		if batch.Entries[i].NeedsReview || flagged[i] {
			continue
		}
		clean = append(clean, batch.Entries[i])
	}
	return clean
}

// entryRow is the CSV export shape consumed by the accounting import.
type entryRow struct {
	DocNumber     string  `csv:"doc_number"`
	Module        string  `csv:"module"`
	Date          string  `csv:"date"`
	Description   string  `csv:"description"`
	CheckNumber   string  `csv:"check_number"`
	Amount        float64 `csv:"amount"`
	DebitAccount  string  `csv:"debit_account"`
	CreditAccount string  `csv:"credit_account"`
	Fund          string  `csv:"fund"`
	Payee         string  `csv:"payee"`
	Confidence    float64 `csv:"confidence"`
	NeedsReview   bool    `csv:"needs_review"`
	ReviewReason  string  `csv:"review_reason"`
}

func writeEntriesCSV(path string, batch *model.BatchResult) error {
	rows := make([]entryRow, 0, len(batch.Entries))
	for i := range batch.Entries {
		entry := &batch.Entries[i]
		txn := entry.Result.Transaction

		row := entryRow{
			DocNumber:    entry.DocNumber,
			Module:       string(entry.Result.Module),
			Date:         txn.Date.Format("01/02/2006"),
			Description:  txn.Description,
			CheckNumber:  txn.CheckNumber,
			Amount:       txn.Amount,
			Payee:        entry.Result.Payee,
			Confidence:   entry.Result.Confidence,
			NeedsReview:  entry.NeedsReview,
			ReviewReason: entry.ReviewReason,
		}
		for _, line := range entry.Lines {
			if !line.Debit.IsZero() {
				row.DebitAccount = line.Account
				row.Fund = line.Fund
			}
			if !line.Credit.IsZero() {
				row.CreditAccount = line.Account
			}
		}
		rows = append(rows, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	return nil
}
