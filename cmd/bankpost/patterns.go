package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/cli"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/common"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage learned classification patterns",
		Long: `Learned patterns capture manual corrections: the next time a matching
description comes through, it classifies the way you corrected it.`,
	}
	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsAddCmd())
	cmd.AddCommand(patternsDeleteCmd())
	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.GetLearnedPatterns(ctx)
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Println(cli.FormatInfo("no learned patterns yet"))
				return nil
			}

			fmt.Println(cli.FormatTitle("Learned patterns"))
			for i := range patterns {
				p := &patterns[i]
				kind := "text"
				if p.IsRegex {
					kind = "regex"
				}
				fmt.Printf("  %4d  %-40q %s -> %s/%s  conf %.2f  used %d  (%s)\n",
					p.ID, p.Pattern, p.Module, p.GLCode, p.FundCode, p.Confidence, p.UseCount, kind)
			}
			return nil
		},
	}
}

func patternsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add a learned pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, _ := cmd.Flags().GetString("module")
			gl, _ := cmd.Flags().GetString("gl")
			fund, _ := cmd.Flags().GetString("fund")
			payee, _ := cmd.Flags().GetString("payee")
			confidence, _ := cmd.Flags().GetFloat64("confidence")
			isRegex, _ := cmd.Flags().GetBool("regex")

			switch model.Module(module) {
			case model.ModuleCR, model.ModuleCD, model.ModuleJV:
			default:
				return common.NewUserError(fmt.Sprintf("module must be CR, CD, or JV, got %q", module), nil)
			}
			if isRegex {
				// Compile check so a bad pattern fails here, not mid-batch.
				if _, err := common.MatchRegex(args[0], ""); err != nil {
					return common.NewUserError(fmt.Sprintf("invalid regex %q", args[0]), err)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pattern := &model.LearnedPattern{
				Pattern:    args[0],
				Module:     model.Module(module),
				GLCode:     gl,
				FundCode:   fund,
				Payee:      payee,
				Confidence: confidence,
				IsRegex:    isRegex,
			}
			if err := store.SaveLearnedPattern(ctx, pattern); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("saved pattern %d", pattern.ID)))
			return nil
		},
	}

	cmd.Flags().String("module", "CD", "module to post to (CR, CD, JV)")
	cmd.Flags().String("gl", "", "GL account code")
	cmd.Flags().String("fund", "", "fund code")
	cmd.Flags().String("payee", "", "payee name")
	cmd.Flags().Float64("confidence", 0.90, "match confidence (0-1)")
	cmd.Flags().Bool("regex", false, "treat the pattern as a regular expression")

	return cmd
}

func patternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a learned pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pattern id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteLearnedPattern(ctx, id); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("deleted pattern %d", id)))
			return nil
		},
	}
}
