package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionBuy  = "buy"
	TransactionSell = "sell"
)

// Transaction is an immutable ledger entry for one executed buy or sell.
// Records are appended exactly once per trade and never edited or deleted;
// only the associated holding mutates in response to them.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Commission  decimal.Decimal `json:"commission"`
	Tax         decimal.Decimal `json:"tax"`
	Notes       string          `json:"notes,omitempty"`
	ExecutedAt  time.Time       `json:"executedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NetAmount is the cash impact from the holder's perspective:
// negative for buys, positive for sells, fees always subtracted.
func (t Transaction) NetAmount() decimal.Decimal {
	net := t.TotalAmount.Sub(t.Commission).Sub(t.Tax)
	if t.Type == TransactionBuy {
		net = t.TotalAmount.Neg().Sub(t.Commission).Sub(t.Tax)
	}
	return net
}

// TransactionStats aggregates ledger entries over a period.
type TransactionStats struct {
	Period           string             `json:"period"`
	TotalBuy         decimal.Decimal    `json:"totalBuy"`
	TotalSell        decimal.Decimal    `json:"totalSell"`
	TotalCommission  decimal.Decimal    `json:"totalCommission"`
	TotalTax         decimal.Decimal    `json:"totalTax"`
	TotalFees        decimal.Decimal    `json:"totalFees"`
	NetCashFlow      decimal.Decimal    `json:"netCashFlow"`
	TransactionCount int                `json:"transactionCount"`
	BuyCount         int                `json:"buyCount"`
	SellCount        int                `json:"sellCount"`
	SymbolCount      int                `json:"symbolCount"`
	MostActive       []SymbolActivity   `json:"mostActiveSymbols"`
}

// SymbolActivity counts trades per symbol for the most-active ranking.
type SymbolActivity struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}
