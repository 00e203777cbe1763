package core

// CardSummary is the spend of one card over a reporting window.
type CardSummary struct {
	LastDigits string  `json:"last_digits"`
	TotalSpent float64 `json:"total_spent"`
	Cashback   float64 `json:"cashback"`
	// Skipped counts rows left out because they could not be converted.
	Skipped int `json:"skipped,omitempty"`
}

// TopTransaction is one of the largest operations of a window. Amount is the
// original, unconverted amount.
type TopTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// CurrencyRate is the rate of a preferred currency.
type CurrencyRate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// StockPrice is the price of a watched stock.
type StockPrice struct {
	Stock string  `json:"stock"`
	Price float64 `json:"price"`
}

// HomePage is the composite summary shown on the main page.
type HomePage struct {
	Greeting        string           `json:"greeting"`
	Cards           []CardSummary    `json:"cards"`
	TopTransactions []TopTransaction `json:"top_transactions"`
	CurrencyRates   []CurrencyRate   `json:"currency_rates"`
	StockPrices     []StockPrice     `json:"stock_prices"`
}

// IsEmpty reports whether the page carries nothing, which is how a failed
// assembly is represented.
func (h HomePage) IsEmpty() bool {
	return h.Greeting == "" &&
		len(h.Cards) == 0 &&
		len(h.TopTransactions) == 0 &&
		len(h.CurrencyRates) == 0 &&
		len(h.StockPrices) == 0
}
