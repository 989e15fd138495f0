package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockInfo is the basic identity of an instrument: code, display name
// and the market it trades on.
type StockInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Market   string `json:"market"`
	Industry string `json:"industry,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// Quote is a point-in-time price snapshot for one instrument.
type Quote struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Market     string          `json:"market"`
	Price      decimal.Decimal `json:"price"`
	Open       decimal.Decimal `json:"open"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	PrevClose  decimal.Decimal `json:"prevClose"`
	Change     decimal.Decimal `json:"change"`
	ChangePct  decimal.Decimal `json:"changePct"`
	Volume     int64           `json:"volume"`
	QuotedAt   time.Time       `json:"quotedAt"`
}

// Candle is one K-line data point.
type Candle struct {
	Date      string          `json:"date"`
	Open      decimal.Decimal `json:"open"`
	Close     decimal.Decimal `json:"close"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    int64           `json:"volume"`
	Change    decimal.Decimal `json:"change"`
	ChangePct decimal.Decimal `json:"changePct"`
}
