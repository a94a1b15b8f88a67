package narrative

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basketwise/basket-cli/internal/model"
	"github.com/basketwise/basket-cli/pkg/anthropic"
)

// stubAnnotator annotates by key, failing the keys listed in fail.
type stubAnnotator struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

func (s *stubAnnotator) Annotate(_ context.Context, item model.DecisionItem) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fail[item.Ingredient.Key] {
		return "", eris.New("narrative: model unavailable")
	}
	return "a sensible pick for " + item.Ingredient.Key, nil
}

func testItems() []model.DecisionItem {
	return []model.DecisionItem{
		{Ingredient: model.Ingredient{Key: "milk", Unit: "gallon", Amount: 1}},
		{Ingredient: model.Ingredient{Key: "eggs", Unit: "dozen", Amount: 1}},
		{Ingredient: model.Ingredient{Key: "bread", Unit: "each", Amount: 1}},
	}
}

func TestApplyAttachesNarratives(t *testing.T) {
	stub := &stubAnnotator{}
	items := testItems()

	annotated := Apply(context.Background(), stub, items)
	require.Len(t, annotated, 3)
	for _, item := range annotated {
		assert.Equal(t, "a sensible pick for "+item.Ingredient.Key, item.Narrative)
	}
	assert.Equal(t, 3, stub.calls)

	// The input slice stays untouched.
	for _, item := range items {
		assert.Empty(t, item.Narrative)
	}
}

func TestApplySkipsFailures(t *testing.T) {
	stub := &stubAnnotator{fail: map[string]bool{"eggs": true}}

	annotated := Apply(context.Background(), stub, testItems())
	require.Len(t, annotated, 3)
	assert.NotEmpty(t, annotated[0].Narrative)
	assert.Empty(t, annotated[1].Narrative)
	assert.NotEmpty(t, annotated[2].Narrative)
}

func TestApplyNilAnnotator(t *testing.T) {
	items := testItems()
	assert.Equal(t, items, Apply(context.Background(), nil, items))
}

func TestWithRetrySuccessFirstTry(t *testing.T) {
	calls := 0
	text, err := withRetry(context.Background(), "milk", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	text, err := withRetry(context.Background(), "milk", func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", eris.New("narrative: transient failure")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := withRetry(ctx, "milk", func(context.Context) (string, error) {
		calls++
		return "", eris.New("narrative: failure")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := retryBackoff(attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		// Cap plus maximum jitter.
		assert.LessOrEqual(t, d, retryMaxBackoff+retryMaxBackoff/4)
	}
}

// stubClient returns a canned response and records the request.
type stubClient struct {
	req  anthropic.MessageRequest
	text string
}

func (c *stubClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	c.req = req
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: c.text}},
	}, nil
}

func TestAnthropicAnnotatorPrompt(t *testing.T) {
	client := &stubClient{text: "  Chosen for its locality and safety.  "}
	ann := NewAnthropic(client, Config{Model: "claude-haiku-4-5-20251001"})

	item := model.DecisionItem{
		Ingredient: model.Ingredient{Key: "strawberries", DisplayName: "Strawberries", Unit: "lb", Amount: 2},
		Winner:     model.Candidate{ID: "straw-organic", Title: "Organic Strawberries", Price: 3.99},
		Tier:       model.TierConscious,
		WinnerScore: model.ScoreBreakdown{
			Base: 50, Safety: 20, Locality: 25, Total: 95,
		},
		Annotations: []string{"organic pick for high-residue produce"},
	}

	text, err := ann.Annotate(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "Chosen for its locality and safety.", text)

	assert.Equal(t, "claude-haiku-4-5-20251001", client.req.Model)
	require.Len(t, client.req.Messages, 1)
	prompt := client.req.Messages[0].Content
	assert.True(t, strings.Contains(prompt, "Strawberries"))
	assert.True(t, strings.Contains(prompt, "tier conscious"))
	assert.True(t, strings.Contains(prompt, "organic pick for high-residue produce"))
}
