package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/flavourheaven/costonomy/internal/pricing"
	"github.com/flavourheaven/costonomy/internal/scaling"
	"github.com/flavourheaven/costonomy/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	masterStyle = cellStyle.Bold(true)
)

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lineRow(l scaling.IngredientLine) []string {
	return []string{
		strconv.FormatInt(l.ItemID, 10),
		l.Name,
		l.Unit,
		formatQuantity(l.Quantity),
		pricing.FormatMoney(l.Price),
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderLines(w io.Writer, lines []scaling.IngredientLine) {
	t := newTable("ITEM", "NAME", "UNIT", "QUANTITY", "PRICE")
	for _, l := range lines {
		t.Row(lineRow(l)...)
	}
	t.Row("", "Total", "", "", pricing.FormatMoney(scaling.Total(lines, scaling.SumMasterRows)))
	fmt.Fprintln(w, t.Render())
}

func renderGuards(w io.Writer, sess *session.Session) {
	if len(sess.Guarded) > 0 {
		fmt.Fprintf(w, "warning: items %v have no unit quantity; priced per 1 unit\n", sess.Guarded)
	}
	if sess.ReferenceGuarded {
		fmt.Fprintln(w, "warning: reference quantity was 0; scaled from 1")
	}
}

func renderBreakdown(w io.Writer, b session.Breakdown) {
	fmt.Fprintf(w, "%s (product %d)\n", b.Name, b.ProductID)

	t := newTable("BASE ITEM", "ITEM", "NAME", "UNIT", "QUANTITY", "PRICE")
	var (
		masterRows []int
		rows       int
	)
	for _, g := range b.Groups {
		name := g.BaseItemName
		if g.BaseItemID == 0 {
			name = "-"
		}
		if g.Master != nil {
			t.Row(append([]string{name}, lineRow(*g.Master)...)...)
			masterRows = append(masterRows, rows)
			rows++
		}
		for _, l := range g.Items {
			t.Row(append([]string{name}, lineRow(l)...)...)
			rows++
		}
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		for _, m := range masterRows {
			if row == m {
				return masterStyle
			}
		}
		return cellStyle
	})
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Total (base items as prepared): %s\n", pricing.FormatMoney(b.MasterTotal))
	fmt.Fprintf(w, "Total (raw ingredients):        %s\n", pricing.FormatMoney(b.IngredientTotal))
}
