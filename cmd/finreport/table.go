package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"finreport/internal/core"
)

// renderHome prints the home page as one table per section.
func renderHome(w io.Writer, page core.HomePage) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", page.Greeting); err != nil {
		return err
	}

	cards := make([][]string, 0, len(page.Cards))
	for _, c := range page.Cards {
		cards = append(cards, []string{c.LastDigits, money(c.TotalSpent), money(c.Cashback), strconv.Itoa(c.Skipped)})
	}
	section(w, "Cards", []string{"Card", "Spent", "Cashback", "Skipped"}, cards)

	top := make([][]string, 0, len(page.TopTransactions))
	for _, t := range page.TopTransactions {
		top = append(top, []string{t.Date, money(t.Amount), t.Category, t.Description})
	}
	section(w, "Top transactions", []string{"Date", "Amount", "Category", "Description"}, top)

	rates := make([][]string, 0, len(page.CurrencyRates))
	for _, r := range page.CurrencyRates {
		rates = append(rates, []string{r.Currency, money(r.Rate)})
	}
	section(w, "Currency rates", []string{"Currency", "Rate"}, rates)

	prices := make([][]string, 0, len(page.StockPrices))
	for _, p := range page.StockPrices {
		prices = append(prices, []string{p.Stock, money(p.Price)})
	}
	section(w, "Stock prices", []string{"Stock", "Price"}, prices)
	return nil
}

func section(w io.Writer, title string, header []string, rows [][]string) {
	fmt.Fprintln(w, title)
	if len(rows) == 0 {
		fmt.Fprint(w, "  (none)\n\n")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(w)
}

func money(v float64) string {
	return strconv.FormatFloat(core.Round2(v), 'f', 2, 64)
}
