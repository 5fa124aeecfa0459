package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dnldd/papertrade/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

// fakeSentimentStore serves canned windows keyed by the window start day.
type fakeSentimentStore struct {
	windows map[string]shared.SentimentWindow
	err     error
}

func (f *fakeSentimentStore) QuerySentimentWindow(ctx context.Context, symbol string, start time.Time, end time.Time) (shared.SentimentWindow, error) {
	if f.err != nil {
		return shared.SentimentWindow{}, f.err
	}

	return f.windows[start.Format(shared.DayLayout)], nil
}

func setupAggregator(store *fakeSentimentStore) (*Aggregator, error) {
	cfg := &AggregatorConfig{
		Store:  store,
		Logger: &log.Logger,
	}

	return NewAggregator(cfg)
}

func TestAggregatorValidate(t *testing.T) {
	// Ensure the aggregator rejects a nil store.
	_, err := NewAggregator(&AggregatorConfig{Logger: &log.Logger})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	asOf := time.Date(2024, 6, 12, 14, 30, 0, 0, time.UTC)
	symbol := "AAPL"

	tests := []struct {
		name      string
		today     shared.SentimentWindow
		yesterday shared.SentimentWindow
		wantAvg   float64
		wantCount int
		wantTrend shared.SentimentTrend
	}{
		{
			"improving when today clears yesterday by the delta",
			shared.SentimentWindow{Avg: 0.5, Count: 4},
			shared.SentimentWindow{Avg: 0.1, Count: 2},
			0.5,
			4,
			shared.ImprovingSentiment,
		},
		{
			"deteriorating when today trails yesterday by the delta",
			shared.SentimentWindow{Avg: -0.4, Count: 6},
			shared.SentimentWindow{Avg: 0.1, Count: 3},
			-0.4,
			6,
			shared.DeterioratingSentiment,
		},
		{
			"neutral within the delta",
			shared.SentimentWindow{Avg: 0.3, Count: 2},
			shared.SentimentWindow{Avg: 0.1, Count: 1},
			0.3,
			2,
			shared.NeutralSentiment,
		},
		{
			"neutral at exactly the delta",
			shared.SentimentWindow{Avg: 0.4, Count: 2},
			shared.SentimentWindow{Avg: 0.1, Count: 1},
			0.4,
			2,
			shared.NeutralSentiment,
		},
		{
			"missing windows default to zero",
			shared.SentimentWindow{},
			shared.SentimentWindow{},
			0,
			0,
			shared.NeutralSentiment,
		},
	}

	for _, test := range tests {
		store := &fakeSentimentStore{
			windows: map[string]shared.SentimentWindow{
				"2024-06-12": test.today,
				"2024-06-11": test.yesterday,
			},
		}

		agg, err := setupAggregator(store)
		assert.NoError(t, err)

		summary, err := agg.Summarize(context.Background(), symbol, asOf)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}
		if summary.AvgSentiment != test.wantAvg {
			t.Errorf("%s: expected avg %v, got %v", test.name, test.wantAvg, summary.AvgSentiment)
		}
		if summary.NewsCount != test.wantCount {
			t.Errorf("%s: expected count %v, got %v", test.name, test.wantCount, summary.NewsCount)
		}
		if summary.Trend != test.wantTrend {
			t.Errorf("%s: expected trend %v, got %v", test.name, test.wantTrend, summary.Trend)
		}
	}
}

func TestSummarizeErrors(t *testing.T) {
	// Ensure an empty symbol is rejected.
	agg, err := setupAggregator(&fakeSentimentStore{})
	assert.NoError(t, err)

	_, err = agg.Summarize(context.Background(), "", time.Now())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	// Ensure store transport failures propagate.
	store := &fakeSentimentStore{err: shared.ErrExternalService}
	agg, err = setupAggregator(store)
	assert.NoError(t, err)

	_, err = agg.Summarize(context.Background(), "AAPL", time.Now())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrExternalService))
}
