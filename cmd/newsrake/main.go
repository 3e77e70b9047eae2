// cmd/newsrake/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsrake/internal/adapters/fetch"
	"newsrake/internal/adapters/llm"
	"newsrake/internal/adapters/output"
	"newsrake/internal/adapters/planner"
	"newsrake/internal/adapters/summarizer"
	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/core/usecases"
	"newsrake/internal/platform/config"
	"newsrake/internal/platform/httpclient"
	"newsrake/internal/platform/logx"
	"newsrake/internal/platform/ui"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// 1. Config centralizada: defaults < YAML < ENV < flags
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintVersion {
		fmt.Printf("newsrake %s (commit %s, built %s)\n", version, commit, date)
		os.Exit(0)
	}

	if cfg.Topic == "" {
		fmt.Fprintln(os.Stderr, "Error: news topic is required")
		fmt.Fprintln(os.Stderr, "Usage: newsrake -t <topic>")
		fmt.Fprintln(os.Stderr, "Try: newsrake -h for help")
		os.Exit(2)
	}

	// 2. Logger compartido
	logger := logx.New()
	logger.Info("newsrake starting",
		"version", version,
		"topic", cfg.Topic,
		"target_total", cfg.Search.TotalTarget,
		"workers", cfg.Pool.Workers,
	)

	// 3. Contexto raíz con señales y deadline del run
	ctx, cancel := rootContextWithSignals(cfg.Deadline())
	defer cancel()

	// 4. Transporte HTTP compartido
	httpClient, err := httpclient.New(httpclient.Config{
		UserAgent:      "NewsRake/" + version,
		ProxyURL:       cfg.ProxyURL,
		RateLimit:      cfg.HTTP.Rate,
		RateLimitBurst: cfg.HTTP.RateBurst,
	}, logger)
	if err != nil {
		logger.Err(err, "phase", "http-setup")
		os.Exit(2)
	}

	// 5. Seeds core desde configuración
	var seeds []domain.SourceSpec
	for _, seed := range cfg.EnabledSeeds() {
		spec, err := seed.ToSpec(cfg.Search.MinPerCoreSource)
		if err != nil {
			logger.Err(err, "phase", "seed-build")
			os.Exit(2)
		}
		seeds = append(seeds, spec)
	}

	// 6. Adaptadores de planner y summarizer: con API key usan el
	// modelo, sin ella degradan a catálogo estático y proyección cruda
	var plannerPort ports.Planner
	var summarizerPort ports.Summarizer
	if cfg.LLM.APIKey != "" {
		llmClient, err := llm.New(httpClient, llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}, logger)
		if err != nil {
			logger.Err(err, "phase", "llm-setup")
			os.Exit(2)
		}
		plannerPort = planner.NewLLMPlanner(llmClient, planner.Options{
			Seeds:     seeds,
			Inflation: cfg.Search.PlanInflation,
		}, logger)
		summarizerPort = summarizer.NewLLMSummarizer(llmClient, summarizer.Options{
			TopN: cfg.Search.TopN,
		}, logger)
	} else {
		logger.Warn("no LLM api key, using static catalog and raw summaries")
		plannerPort = planner.NewStaticPlanner(seeds, logger)
		summarizerPort = summarizer.NewBasicSummarizer(cfg.Search.TopN, logger)
	}

	// 7. Cliente de fetch: mux por mecanismo
	mux := fetch.NewMux(logger)
	mux.Register(domain.QueryKindRSS, fetch.NewRSSClient(httpClient, "", logger))
	webSearch := fetch.NewWebSearchClient(httpClient, logger).
		WithJitter(500*time.Millisecond, 2*time.Second)
	mux.Register(domain.QueryKindWebSearch, webSearch)
	mux.Register(domain.QueryKindSiteSearch, webSearch)

	// Las rondas de compensación pueden repetir la misma consulta; una
	// caché corta absorbe esos repeats dentro del run.
	fetcher := fetch.NewCachedClient(mux, 128, 5*time.Minute, logger)

	// 8. Motor
	orch := usecases.NewRetrievalOrchestrator(
		plannerPort,
		fetcher,
		summarizerPort,
		usecases.Params{
			TotalTarget:   cfg.Search.TotalTarget,
			MinPerCore:    cfg.Search.MinPerCoreSource,
			TopN:          cfg.Search.TopN,
			SnippetMaxLen: cfg.Search.SnippetMaxLen,
			Pool: usecases.PoolOptions{
				Workers:              cfg.Pool.Workers,
				PerSourceConcurrency: cfg.Pool.PerSourceConcurrency,
				Retry: usecases.RetryPolicy{
					MaxAttempts:    cfg.Retry.MaxAttempts,
					BackoffBase:    cfg.Retry.BackoffBase,
					Multiplier:     cfg.Retry.BackoffMultiplier,
					BackoffMax:     cfg.Retry.BackoffMax,
					JitterFraction: cfg.Retry.JitterFraction,
				},
			},
			Compensation: usecases.CompensationPolicy{
				MaxRounds:         cfg.Compensation.MaxRounds,
				ToleranceFraction: cfg.Compensation.ToleranceFraction,
				FillBuffer:        cfg.Compensation.FillBuffer,
			},
			Version: version,
		},
		ui.NewPTermPresenter(),
		logger,
	)

	report, err := orch.Run(ctx, cfg.Topic)
	if err != nil {
		logger.Err(err, "phase", "run")
		os.Exit(1)
	}

	// 9. Salidas: JSON siempre, colección cruda auxiliar, tabla opcional
	path, err := output.WriteJSON(cfg.Output.Dir, report)
	if err != nil {
		logger.Err(err, "phase", "output")
		os.Exit(1)
	}
	logger.Info("report written", "file", path)

	rawWriter := output.NewRawWriter(cfg.Output.Dir, report.ID, report.Topic, logger)
	if itemsPath, err := rawWriter.Write(report.Items); err != nil {
		logger.Warn("failed to write raw collection", "error", err.Error())
	} else {
		logger.Info("raw collection written", "file", itemsPath)
	}

	if !cfg.Output.TableDisabled {
		if err := output.RenderTable(report); err != nil {
			logger.Warn("failed to render table", "error", err.Error())
		}
	}
}

// rootContextWithSignals construye el contexto raíz: deadline global
// del run (si hay) y cancelación por SIGINT/SIGTERM.
func rootContextWithSignals(deadline time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if deadline > 0 {
		ctx, cancel = context.WithTimeout(ctx, deadline)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
