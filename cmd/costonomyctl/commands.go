package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/flavourheaven/costonomy/internal/pricing"
	"github.com/flavourheaven/costonomy/internal/session"
)

func newPrepareCmd(a *app) *cobra.Command {
	var (
		submit     bool
		department int64
		date       string
		when       string
	)
	cmd := &cobra.Command{
		Use:   "prepare BASE_ITEM_ID QUANTITY",
		Short: "Scale a base item recipe to a batch quantity",
		Long: "Scale a base item recipe to QUANTITY units of the base item. " +
			"Mass (GM) and volume (ML) quantities are rounded to whole units.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "base item id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sess, err := a.svc.OpenBaseItem(ctx, id)
			if err != nil {
				return err
			}
			if sess, err = a.svc.Rescale(ctx, sess.ID, args[1]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s %s\n", sess.Name, formatQuantity(sess.ReferenceQuantity), sess.Unit)
			renderLines(out, sess.Current)
			renderGuards(out, sess)

			if !submit {
				return nil
			}
			receipt, err := a.svc.SubmitPurchase(ctx, sess.ID, session.PurchaseRequest{
				DepartmentID: department,
				Date:         date,
				DateFilter:   when,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Purchase recorded for %s (%s)\n", receipt.Date, receipt.DepartmentName)
			fmt.Fprintf(out, "Total cost: %s\n", pricing.FormatMoney(receipt.Summary.TotalCost))
			fmt.Fprintf(out, "Cost per unit (%s %s): %s\n",
				formatQuantity(sess.UnitQuantity), sess.Unit, pricing.FormatMoney(receipt.Summary.CostPerUnit))
			return nil
		},
	}
	cmd.Flags().BoolVar(&submit, "submit", false, "record the purchase")
	cmd.Flags().Int64Var(&department, "department", 0, "department receiving the purchase")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&when, "when", session.DateToday, "purchase date filter when --date is empty: today or yesterday")
	return cmd
}

func newCloneCmd(a *app) *cobra.Command {
	var target int64
	cmd := &cobra.Command{
		Use:   "clone PRODUCT_ID FACTOR",
		Short: "Multiply a recipe by quarter, half, double or any positive factor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sess, err := a.svc.OpenRecipe(ctx, id)
			if err != nil {
				return err
			}
			if sess, err = a.svc.Multiply(ctx, sess.ID, args[1]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s x%s\n", sess.Name, formatQuantity(sess.Multiplier))
			renderLines(out, sess.Current)
			renderGuards(out, sess)

			if target == 0 {
				return nil
			}
			count, err := a.svc.SubmitClone(ctx, sess.ID, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cloned %d ingredients to product %d\n", count, target)
			return nil
		},
	}
	cmd.Flags().Int64Var(&target, "to", 0, "write the scaled quantities to this product")
	return cmd
}

func newSetQuantityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-quantity PRODUCT_ID ITEM_ID QUANTITY",
		Short: "Change one ingredient quantity of a recipe",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			itemID, err := parseID(args[1], "item id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sess, err := a.svc.OpenRecipe(ctx, productID)
			if err != nil {
				return err
			}
			if sess, err = a.svc.EditLine(ctx, sess.ID, itemID, args[2]); err != nil {
				return err
			}
			if sess, err = a.svc.SaveLine(ctx, sess.ID, itemID); err != nil {
				return err
			}

			line, _ := sess.Line(itemID)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s set to %s %s (%s)\n",
				sess.Name, line.Name, formatQuantity(line.Quantity), line.Unit, pricing.FormatMoney(line.Price))
			renderGuards(out, sess)
			return nil
		},
	}
}

func newBreakdownCmd(a *app) *cobra.Command {
	var storeItems string
	cmd := &cobra.Command{
		Use:   "breakdown PRODUCT_ID",
		Short: "Show a recipe grouped by base item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			b, err := a.svc.RecipeBreakdown(cmd.Context(), id, storeItems)
			if err != nil {
				return err
			}
			renderBreakdown(cmd.OutOrStdout(), b)
			return nil
		},
	}
	cmd.Flags().StringVar(&storeItems, "store-items", "", "comma separated store item IDs to include")
	return cmd
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
