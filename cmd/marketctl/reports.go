package main

import (
	"fmt"
	"iter"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/agrimarket/internal/reports"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	"github.com/angelmondragon/agrimarket/pkg/enums"
	"github.com/angelmondragon/agrimarket/pkg/types"
)

const dateLayout = "2006-01-02"

type historyFlags struct {
	status string
	from   string
	to     string
	limit  uint64
}

func (f *historyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "Only orders with this status")
	cmd.Flags().StringVar(&f.from, "from", "", "Placed on or after this date (YYYY-MM-DD, UTC)")
	cmd.Flags().StringVar(&f.to, "to", "", "Placed before this date (YYYY-MM-DD, UTC)")
	cmd.Flags().Uint64Var(&f.limit, "limit", 0, "Maximum rows (0 = all)")
}

func (f *historyFlags) filter() (reports.HistoryFilter, error) {
	out := reports.HistoryFilter{Limit: f.limit}
	if f.status != "" {
		s, err := enums.ParseOrderStatus(f.status)
		if err != nil {
			return out, err
		}
		out.Status = &s
	}
	for _, p := range []struct {
		raw string
		dst **time.Time
	}{{f.from, &out.PlacedFrom}, {f.to, &out.PlacedTo}} {
		if p.raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, p.raw, time.UTC)
		if err != nil {
			return out, fmt.Errorf("invalid date %q: %w", p.raw, err)
		}
		*p.dst = &t
	}
	return out, nil
}

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Read the sales and purchase history views",
	}

	var salesFlags historyFlags
	sales := &cobra.Command{
		Use:   "sales FARMER_ID",
		Short: "Per-item sales history of a farmer, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			filter, err := salesFlags.filter()
			if err != nil {
				return err
			}
			return a.printHistory(a.reader.FarmerSalesHistory(cmd.Context(), id, filter), "COOP")
		},
	}
	salesFlags.register(sales)

	var purchaseFlags historyFlags
	purchases := &cobra.Command{
		Use:   "purchases COOP_ID",
		Short: "Per-item purchase history of a cooperative, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			filter, err := purchaseFlags.filter()
			if err != nil {
				return err
			}
			return a.printHistory(a.reader.CoopPurchaseHistory(cmd.Context(), id, filter), "FARM")
		},
	}
	purchaseFlags.register(purchases)

	cmd.AddCommand(sales, purchases)
	return cmd
}

// printHistory shows the counterparty column named by party.
func (a *app) printHistory(seq iter.Seq2[models.SalesHistoryRow, error], party string) error {
	rows, err := reports.Collect(seq)
	if err != nil {
		return err
	}
	if a.jsonOutput {
		return writeJSON(a.out, rows)
	}
	t := newTable(a.out, "ORDER", "PLACED", "STATUS", party, "PRODUCT", "QUANTITY", "UNIT PRICE", "SUBTOTAL")
	for _, r := range rows {
		counterparty := r.CoopName
		if party == "FARM" {
			counterparty = r.FarmName
		}
		t.row(r.OrderNumber, r.PlacedAt.UTC().Format(dateLayout), r.Status, counterparty, r.ProductName,
			types.Quantity.String(r.Quantity), types.Money.String(r.UnitPrice), types.Total.String(r.Subtotal))
	}
	return t.flush()
}
