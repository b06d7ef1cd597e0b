package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/angelmondragon/agrimarket/pkg/types"
)

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect orders and set their stored state",
	}

	show := &cobra.Command{
		Use:   "show ORDER_ID",
		Short: "Print an order with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := a.orders.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(a.out, order)
			}
			fmt.Fprintf(a.out, "%s  status=%s  total=%s %s\n",
				order.OrderNumber, order.Status, types.Total.String(order.TotalAmount), order.Currency)
			t := newTable(a.out, "ITEM", "PRODUCT", "QUANTITY", "UNIT PRICE", "SUBTOTAL")
			for _, it := range order.Items {
				t.row(it.ID, it.ProductID, types.Quantity.String(it.Quantity), types.Money.String(it.UnitPrice), types.Total.String(it.Subtotal))
			}
			return t.flush()
		},
	}

	status := &cobra.Command{
		Use:   "status ORDER_ID STATUS",
		Short: "Store a new order status",
		Long: `Store a new order status. Any status may follow any other.

Statuses: pending, accepted, in_transit, completed, cancelled`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			next, err := enums.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.orders.UpdateStatus(cmd.Context(), id, next); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "order %d is now %s\n", id, next)
			return nil
		},
	}

	var store bool
	total := &cobra.Command{
		Use:   "total ORDER_ID",
		Short: "Sum item subtotals, optionally storing the result as total_amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sum, err := a.orders.ItemsTotal(cmd.Context(), id)
			if err != nil {
				return err
			}
			if store {
				if err := a.orders.SetTotal(cmd.Context(), id, sum); err != nil {
					return err
				}
			}
			fmt.Fprintln(a.out, types.Total.String(sum))
			return nil
		},
	}
	total.Flags().BoolVar(&store, "store", false, "Write the sum to orders.total_amount")

	cmd.AddCommand(show, status, total)
	return cmd
}
