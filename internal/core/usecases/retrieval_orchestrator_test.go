// internal/core/usecases/retrieval_orchestrator_test.go
package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/testutil"
)

func testParams(total, minPerCore int) Params {
	return Params{
		TotalTarget:   total,
		MinPerCore:    minPerCore,
		TopN:          10,
		SnippetMaxLen: 300,
		Pool: PoolOptions{
			Workers:              4,
			PerSourceConcurrency: 1,
			Retry:                fastRetry,
		},
		Compensation: CompensationPolicy{
			MaxRounds:         2,
			ToleranceFraction: 0.9,
			FillBuffer:        2,
		},
		SimilarityThreshold: 0.8,
		Version:             "test",
	}
}

func defaultPlan() []domain.SourceSpec {
	return []domain.SourceSpec{
		testutil.CoreSpec("google_news"),
		testutil.CoreSpec("web_search"),
		testutil.DiscoveredSpec("techblog"),
		testutil.DiscoveredSpec("sector_press"),
	}
}

func TestRunHappyPath(t *testing.T) {
	planner := &testutil.MockPlanner{Specs: defaultPlan()}
	fetcher := &testutil.MockFetchClient{ItemsPerCall: 10}
	summarizer := &testutil.MockSummarizer{Summary: &ports.Summary{
		Prologue: "all quiet on the news front",
	}}

	orch := NewRetrievalOrchestrator(planner, fetcher, summarizer,
		testParams(20, 3), nil, testutil.NewTestLogger())

	report, err := orch.Run(context.Background(), "quantum computing")
	testutil.AssertNoError(t, err, "Run")
	testutil.AssertNotNil(t, report, "report")
	testutil.AssertEqual(t, report.Topic, "quantum computing", "topic")
	testutil.AssertEqual(t, report.Prologue, "all quiet on the news front", "prologue from summarizer")
	testutil.AssertEqual(t, report.Metadata.FinalItems, 20, "target met exactly")
	testutil.AssertEqual(t, planner.CallCount, 1, "planner consulted once")

	for _, q := range report.Quota {
		testutil.AssertEqual(t, q.Outcome, domain.QuotaMet, "tier "+string(q.Tier))
	}
}

func TestRunEmptyTopicFails(t *testing.T) {
	orch := NewRetrievalOrchestrator(&testutil.MockPlanner{}, &testutil.MockFetchClient{},
		&testutil.MockSummarizer{}, testParams(10, 3), nil, testutil.NewTestLogger())

	_, err := orch.Run(context.Background(), "")
	testutil.AssertError(t, err, "empty topic")
	testutil.AssertTrue(t, errors.Is(err, domain.ErrEmptyTopic), "sentinel preserved")
}

func TestRunPlannerFailureIsFatal(t *testing.T) {
	planner := &testutil.MockPlanner{Err: errors.New("llm unreachable")}
	orch := NewRetrievalOrchestrator(planner, &testutil.MockFetchClient{},
		&testutil.MockSummarizer{}, testParams(10, 3), nil, testutil.NewTestLogger())

	_, err := orch.Run(context.Background(), "anything")
	testutil.AssertError(t, err, "planner failure")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrPlannerFailed), "classified as planner failure")
}

func TestRunEmptyPlanIsFatal(t *testing.T) {
	planner := &testutil.MockPlanner{Specs: nil}
	orch := NewRetrievalOrchestrator(planner, &testutil.MockFetchClient{},
		&testutil.MockSummarizer{}, testParams(10, 3), nil, testutil.NewTestLogger())

	_, err := orch.Run(context.Background(), "anything")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrPlannerFailed), "no sources, no run")
}

func TestRunCompensatesPermanentFailure(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("google_news"),
		testutil.DiscoveredSpec("flaky_blog"),
		testutil.DiscoveredSpec("reserve_blog"),
	}
	planner := &testutil.MockPlanner{Specs: specs}

	seq := 0
	fetcher := &testutil.MockFetchClient{
		FetchFunc: func(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
			if req.Spec.Name == "flaky_blog" {
				return nil, errors.Permanent(errors.ErrNotFound)
			}
			n := req.Limit
			items := make([]*domain.NewsItem, 0, n)
			for i := 0; i < n; i++ {
				seq++
				items = append(items, testutil.SyntheticItem(req.Spec, seq))
			}
			return items, nil
		},
	}

	params := testParams(12, 4)
	params.Pool.Workers = 1 // secuencial: el mock no es concurrente-seguro con seq
	orch := NewRetrievalOrchestrator(planner, fetcher, &testutil.MockSummarizer{},
		params, nil, testutil.NewTestLogger())

	report, err := orch.Run(context.Background(), "storage tech")
	testutil.AssertNoError(t, err, "Run")
	testutil.AssertTrue(t, report.Metadata.Rounds >= 1, "compensation round executed")
	testutil.AssertEqual(t, report.Metadata.FinalItems, 12, "gap filled from reserve source")

	promoted := fetcher.RequestsFor("reserve_blog")
	testutil.AssertTrue(t, len(promoted) > 0, "reserve source promoted")

	warned := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "flaky_blog") {
			warned = true
		}
	}
	testutil.AssertTrue(t, warned, "failed source surfaced in warnings")
}

func TestRunDeadlineProducesPartialReport(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("fast_feed"),
		testutil.CoreSpec("stalled_feed"),
	}
	planner := &testutil.MockPlanner{Specs: specs}
	fetcher := &testutil.MockFetchClient{
		FetchFunc: func(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
			if req.Spec.Name == "stalled_feed" {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return testutil.SyntheticItems(req.Spec, 1, req.Limit), nil
		},
	}

	orch := NewRetrievalOrchestrator(planner, fetcher, &testutil.MockSummarizer{},
		testParams(10, 3), nil, testutil.NewTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	report, err := orch.Run(ctx, "partial results")
	testutil.AssertNoError(t, err, "deadline is not fatal")
	testutil.AssertTrue(t, report.Metadata.FinalItems > 0, "partial items delivered")
	testutil.AssertTrue(t, len(report.Warnings) > 0, "deadline warned")
}

func TestRunSummarizerFailureFallsBack(t *testing.T) {
	planner := &testutil.MockPlanner{Specs: defaultPlan()}
	fetcher := &testutil.MockFetchClient{ItemsPerCall: 10}
	summarizer := &testutil.MockSummarizer{Err: errors.New("model overloaded")}

	orch := NewRetrievalOrchestrator(planner, fetcher, summarizer,
		testParams(20, 3), nil, testutil.NewTestLogger())

	report, err := orch.Run(context.Background(), "fallback check")
	testutil.AssertNoError(t, err, "summarizer failure degrades, not aborts")
	testutil.AssertEqual(t, report.Prologue, "", "no prologue without summarizer")
	testutil.AssertTrue(t, len(report.TopNews) > 0, "raw items mapped to report entries")
	testutil.AssertTrue(t, len(report.Warnings) > 0, "degradation warned")
}

func TestRunTruncatesSnippets(t *testing.T) {
	spec := testutil.CoreSpec("verbose_feed")
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	planner := &testutil.MockPlanner{Specs: []domain.SourceSpec{spec}}
	fetcher := &testutil.MockFetchClient{
		FetchFunc: func(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
			item := testutil.SyntheticItem(req.Spec, 1)
			item.Snippet = string(long)
			item.Fingerprint = item.ComputeFingerprint()
			return []*domain.NewsItem{item}, nil
		},
	}
	summarizer := &testutil.MockSummarizer{
		SummarizeFunc: func(ctx context.Context, topic string, items []*domain.NewsItem) (*ports.Summary, error) {
			for _, item := range items {
				if len([]rune(item.Snippet)) > 303 {
					t.Errorf("snippet not truncated: %d runes", len([]rune(item.Snippet)))
				}
			}
			return &ports.Summary{}, nil
		},
	}

	params := testParams(5, 1)
	params.Compensation.MaxRounds = 0
	orch := NewRetrievalOrchestrator(planner, fetcher, summarizer, params, nil, testutil.NewTestLogger())

	_, err := orch.Run(context.Background(), "long snippets")
	testutil.AssertNoError(t, err, "Run")
}
