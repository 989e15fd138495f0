package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
)

const aiSystemPrompt = "You are a financial analysis assistant for a personal " +
	"stock portfolio tracker. Answer concisely in plain prose. You are not a " +
	"licensed advisor; frame observations as information, not recommendations."

// AIService produces commentary on stocks and portfolios through Gemini.
// The service is optional: without an API key the client is nil and every
// method reports ErrAIUnavailable, leaving the rest of the API untouched.
type AIService struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	market    marketdata.Provider
	portfolio *PortfolioService
	log       *logrus.Entry
}

// NewAIService creates a new AIService. A nil client disables the service.
func NewAIService(
	client *genai.Client,
	modelName string,
	timeout time.Duration,
	market marketdata.Provider,
	portfolio *PortfolioService,
	log *logrus.Logger,
) *AIService {
	return &AIService{
		client:    client,
		modelName: modelName,
		timeout:   timeout,
		market:    market,
		portfolio: portfolio,
		log:       log.WithField("component", "ai-service"),
	}
}

// Enabled reports whether commentary is available.
func (s *AIService) Enabled() bool { return s.client != nil }

// Ask sends a free-form question.
func (s *AIService) Ask(ctx context.Context, question string) (string, error) {
	if question == "" {
		return "", fmt.Errorf("%w: question is required", apperrors.ErrInvalidInput)
	}
	return s.generate(ctx, question)
}

// AnalyzeStock asks for commentary on one symbol, grounded in its current
// quote so the model is not guessing at prices.
func (s *AIService) AnalyzeStock(ctx context.Context, symbol string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.ErrAIUnavailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Comment on the stock %s.", symbol)

	quoteCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if quote, err := s.market.Quote(quoteCtx, symbol); err == nil {
		fmt.Fprintf(&b, " Latest quote: price %s, change %s%%, volume %d.",
			quote.Price, quote.ChangePct, quote.Volume)
	}
	if info, err := s.market.Identity(quoteCtx, symbol); err == nil {
		fmt.Fprintf(&b, " The company is %s (%s market).", info.Name, info.Market)
	}

	return s.generate(ctx, b.String())
}

// AnalyzePortfolio asks for commentary on one of the user's portfolios,
// summarizing its valued positions into the prompt.
func (s *AIService) AnalyzePortfolio(ctx context.Context, portfolioID, userID string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.ErrAIUnavailable
	}

	detail, err := s.portfolio.Detail(ctx, portfolioID, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Comment on this portfolio. Total value %s, total cost %s, profit %s (%s%%).",
		detail.TotalValue, detail.TotalCost, detail.TotalProfit, detail.ProfitPct.Round(2))
	if len(detail.Holdings) == 0 {
		b.WriteString(" The portfolio holds no positions.")
	}
	for _, h := range detail.Holdings {
		fmt.Fprintf(&b, " Position: %s (%s), %d shares at average cost %s, current price %s, profit %s.",
			h.Symbol, h.Name, h.Quantity, h.AverageCost, h.CurrentPrice, h.Profit)
	}
	b.WriteString(" Mention concentration and the biggest winner and loser.")

	return s.generate(ctx, b.String())
}

// AnalyzeMarket asks for commentary on a set of symbols, typically a
// watchlist, grounded in their current quotes.
func (s *AIService) AnalyzeMarket(ctx context.Context, symbols []string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.ErrAIUnavailable
	}
	if len(symbols) == 0 {
		return "", fmt.Errorf("%w: at least one symbol is required", apperrors.ErrInvalidInput)
	}

	var b strings.Builder
	b.WriteString("Give a short market overview for these stocks.")
	for _, symbol := range symbols {
		quoteCtx, cancel := context.WithTimeout(ctx, s.timeout)
		quote, err := s.market.Quote(quoteCtx, symbol)
		cancel()
		if err != nil {
			fmt.Fprintf(&b, " %s: quote unavailable.", symbol)
			continue
		}
		fmt.Fprintf(&b, " %s: price %s, change %s%%.", symbol, quote.Price, quote.ChangePct)
	}

	return s.generate(ctx, b.String())
}

func (s *AIService) generate(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.ErrAIUnavailable
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(genCtx, s.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: aiSystemPrompt}}},
	})
	if err != nil {
		s.log.WithError(err).Warn("generation failed")
		return "", fmt.Errorf("%w: %v", apperrors.ErrAIUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.ErrAIUnavailable
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
