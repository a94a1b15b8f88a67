// Package narrative attaches optional, non-authoritative prose explanations
// to finalized decisions. The annotator runs strictly after the engine: its
// failures or timeouts never propagate into or alter a decision.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/basketwise/basket-cli/internal/model"
	"github.com/basketwise/basket-cli/pkg/anthropic"
)

// Annotator produces a short narrative for one finalized, read-only
// decision item.
type Annotator interface {
	Annotate(ctx context.Context, item model.DecisionItem) (string, error)
}

// Apply runs the annotator over finished items and returns copies with
// narratives attached. The originals are never mutated; annotation failures
// are logged and the item is returned untouched.
func Apply(ctx context.Context, ann Annotator, items []model.DecisionItem) []model.DecisionItem {
	if ann == nil || len(items) == 0 {
		return items
	}

	annotated := make([]model.DecisionItem, len(items))
	copy(annotated, items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range annotated {
		g.Go(func() error {
			text, err := ann.Annotate(gctx, annotated[i])
			if err != nil {
				zap.L().Warn("narrative: annotation skipped",
					zap.String("ingredient", annotated[i].Ingredient.Key),
					zap.Error(err),
				)
				return nil
			}
			annotated[i].Narrative = text
			return nil
		})
	}
	_ = g.Wait()
	return annotated
}

// Config tunes the Anthropic-backed annotator.
type Config struct {
	Model          string
	Timeout        time.Duration
	RequestsPerSec float64
}

// AnthropicAnnotator generates narratives with a Claude model.
type AnthropicAnnotator struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewAnthropic returns an annotator backed by the given client.
func NewAnthropic(client anthropic.Client, cfg Config) *AnthropicAnnotator {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AnthropicAnnotator{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

const systemPrompt = `You write one-sentence, plain-language explanations of
grocery recommendations. Mention the decisive factors only. No marketing
language.`

func (a *AnthropicAnnotator) Annotate(ctx context.Context, item model.DecisionItem) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return withRetry(ctx, item.Ingredient.Key, func(ctx context.Context) (string, error) {
		resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     a.model,
			MaxTokens: 200,
			System:    systemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: itemPrompt(item)},
			},
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(resp.Text()), nil
	})
}

func itemPrompt(item model.DecisionItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingredient: %s\n", item.Ingredient.DisplayName)
	fmt.Fprintf(&b, "Chosen product: %s (%s), $%.2f, tier %s\n",
		item.Winner.Title, item.Winner.Brand, item.Winner.Price, item.Tier)
	fmt.Fprintf(&b, "Score drivers: safety %+.0f, seasonality %+.0f, locality %+.0f, packaging %+.0f\n",
		item.WinnerScore.Safety, item.WinnerScore.Season, item.WinnerScore.Locality, item.WinnerScore.Packaging)
	for _, note := range item.Annotations {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}
	b.WriteString("Explain this choice in one sentence.")
	return b.String()
}
