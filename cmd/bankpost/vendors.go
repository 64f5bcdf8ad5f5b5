package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/cli"
	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func vendorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Manage the vendor table",
	}
	cmd.AddCommand(vendorsListCmd())
	cmd.AddCommand(vendorsAddCmd())
	return cmd
}

func vendorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known vendors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendors, err := store.GetAllVendors(ctx)
			if err != nil {
				return err
			}
			if len(vendors) == 0 {
				fmt.Println(cli.FormatInfo("no vendors yet"))
				return nil
			}

			fmt.Println(cli.FormatTitle("Vendors"))
			for i := range vendors {
				v := &vendors[i]
				line := fmt.Sprintf("  %-30s GL %s  fund %s  used %d",
					v.Name, v.GLCode, v.FundCode, v.UseCount)
				if len(v.Aliases) > 0 {
					line += "  aka " + strings.Join(v.Aliases, ", ")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func vendorsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gl, _ := cmd.Flags().GetString("gl")
			fund, _ := cmd.Flags().GetString("fund")
			aliases, _ := cmd.Flags().GetStringSlice("alias")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendor := &model.Vendor{
				Name:     args[0],
				Aliases:  aliases,
				GLCode:   gl,
				FundCode: fund,
			}
			if err := store.SaveVendor(ctx, vendor); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("saved vendor " + vendor.Name))
			return nil
		},
	}

	cmd.Flags().String("gl", model.VendorGL, "GL account for this vendor's disbursements")
	cmd.Flags().String("fund", model.DefaultFundCode, "fund code")
	cmd.Flags().StringSlice("alias", nil, "alternate spellings seen on statements (repeatable)")

	return cmd
}

func customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage the customer and grantor table",
	}
	cmd.AddCommand(customersListCmd())
	cmd.AddCommand(customersAddCmd())
	return cmd
}

func customersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known customers and grantors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			customers, err := store.GetAllCustomers(ctx)
			if err != nil {
				return err
			}
			if len(customers) == 0 {
				fmt.Println(cli.FormatInfo("no customers yet"))
				return nil
			}

			fmt.Println(cli.FormatTitle("Customers"))
			for i := range customers {
				c := &customers[i]
				line := fmt.Sprintf("  %-30s GL %s  fund %s  used %d",
					c.Name, c.GLCode, c.FundCode, c.UseCount)
				if c.CFDANumber != "" {
					line += "  CFDA " + c.CFDANumber
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func customersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a customer or grantor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gl, _ := cmd.Flags().GetString("gl")
			fund, _ := cmd.Flags().GetString("fund")
			cfda, _ := cmd.Flags().GetString("cfda")
			aliases, _ := cmd.Flags().GetStringSlice("alias")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			customer := &model.Customer{
				Name:       args[0],
				Aliases:    aliases,
				GLCode:     gl,
				FundCode:   fund,
				CFDANumber: cfda,
			}
			if err := store.SaveCustomer(ctx, customer); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("saved customer " + customer.Name))
			return nil
		},
	}

	cmd.Flags().String("gl", model.FallbackCRGL, "GL account for this payer's receipts")
	cmd.Flags().String("fund", model.DefaultFundCode, "fund code")
	cmd.Flags().String("cfda", "", "federal grant program number, if a grantor")
	cmd.Flags().StringSlice("alias", nil, "alternate spellings seen on statements (repeatable)")

	return cmd
}
