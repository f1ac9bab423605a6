package commands

import (
	"encoding/json"
	"fmt"

	"github.com/Skotchmaster/shopsplit/pkg/shopclient"
	"github.com/spf13/cobra"
)

func newOrderCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "order",
		Args:    cobra.NoArgs,
		Aliases: []string{"orders"},
		Short:   "Place and list orders",
	}
	cmd.AddCommand(newOrderSubmitCommand(opts), newOrderListCommand(opts))
	return cmd
}

func newOrderSubmitCommand(opts *options) *cobra.Command {
	var itemsJSON string
	cmd := &cobra.Command{
		Use:   "submit",
		Args:  cobra.NoArgs,
		Short: "Submit an order",
		Example: `  shopctl order submit --items '[{"product_id":1,"name":"tea","quantity":2,"total_price":7.5}]'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var items []shopclient.OrderItem
			if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
				return fmt.Errorf("--items: %w", err)
			}
			s, err := loadSession(opts.sessionFile)
			if err != nil {
				return err
			}

			receipt, renewed, err := opts.client().SubmitOrder(cmd.Context(), s, items)
			if renewed != s {
				if serr := saveSession(opts.sessionFile, renewed); serr != nil {
					return serr
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s accepted, total %.2f\n", receipt.OrderID, receipt.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&itemsJSON, "items", "", "order items as a JSON array")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func newOrderListCommand(opts *options) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(opts.sessionFile)
			if err != nil {
				return err
			}
			orders, renewed, err := opts.client().ListOrders(cmd.Context(), s, limit, offset)
			if renewed != s {
				if serr := saveSession(opts.sessionFile, renewed); serr != nil {
					return serr
				}
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(orders)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max orders")
	cmd.Flags().IntVar(&offset, "offset", 0, "orders to skip")
	return cmd
}
