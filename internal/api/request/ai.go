package request

// AskRequest represents a free-form AI question request body.
type AskRequest struct {
	Question string `json:"question"`
}

// MarketAnalysisRequest represents a multi-symbol commentary request body.
type MarketAnalysisRequest struct {
	Symbols []string `json:"symbols"`
}
