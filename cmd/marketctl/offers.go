package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/agrimarket/internal/reports"
	"github.com/angelmondragon/agrimarket/pkg/types"
)

func newOffersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offers",
		Short: "List and toggle cooperative offers",
	}

	var coopID, productID, categoryID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List active offers",
		Long: `List rows of the active_offers view.

Examples:
  marketctl offers list
  marketctl offers list --coop 4 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := reports.OfferFilter{
				CoopID:     optionalID(cmd, "coop", coopID),
				ProductID:  optionalID(cmd, "product", productID),
				CategoryID: optionalID(cmd, "category", categoryID),
			}
			rows, err := reports.Collect(a.reader.ActiveOffers(cmd.Context(), filter))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(a.out, rows)
			}
			t := newTable(a.out, "OFFER", "COOP", "PRODUCT", "CATEGORY", "PRICE", "CURRENCY")
			for _, o := range rows {
				t.row(o.OfferID, o.CoopName, o.ProductName, o.CategoryName, types.Money.String(o.PricePerUnit), o.Currency)
			}
			return t.flush()
		},
	}
	list.Flags().Int64Var(&coopID, "coop", 0, "Only offers of this cooperative")
	list.Flags().Int64Var(&productID, "product", 0, "Only offers targeting this product")
	list.Flags().Int64Var(&categoryID, "category", 0, "Only offers targeting this category")

	cmd.AddCommand(list, newSetActiveCmd(a, "activate", true), newSetActiveCmd(a, "deactivate", false))
	return cmd
}

func newSetActiveCmd(a *app, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " OFFER_ID",
		Short: fmt.Sprintf("Mark an offer %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.offers.SetActive(cmd.Context(), id, active); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "offer %d %sd\n", id, use)
			return nil
		},
	}
}

func optionalID(cmd *cobra.Command, flag string, v int64) *int64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
