package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/cli"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/config"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage bank statement templates",
	}
	cmd.AddCommand(templatesListCmd())
	cmd.AddCommand(templatesValidateCmd())
	return cmd
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available bank templates",
		RunE: func(_ *cobra.Command, _ []string) error {
			templates, err := config.LoadTemplates()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(templates))
			for name := range templates {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Println(cli.FormatTitle("Bank templates"))
			for _, name := range names {
				tmpl := templates[name]
				fmt.Printf("  %s  %d patterns, date format %s\n",
					cli.BoldStyle.Render(name), len(tmpl.Patterns), tmpl.DateFormat)
			}
			return nil
		},
	}
}

func templatesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Validate a template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tmpl, err := config.LoadTemplateFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("template %q is valid (%d patterns)",
				tmpl.Name, len(tmpl.Patterns))))
			return nil
		},
	}
}
