package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pairs_go/internal/app"
	"pairs_go/internal/domain"
	"pairs_go/internal/engine"
	"pairs_go/internal/event"
	"pairs_go/internal/execution"
	"pairs_go/internal/infra/feed"
	"pairs_go/internal/infra/metrics"
	"pairs_go/pkg/quant"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// Pprof server (localhost only)
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("pprof server failed", slog.Any("error", err))
		}
	}()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics endpoint
	metricsSrv := metrics.Serve(cfg.Metrics.Addr)
	defer metricsSrv.Close()

	// Pre-warm the market-data event pools before the feed starts
	event.Warmup()

	params := engine.Params{
		LotSize:          quant.Lots(cfg.Trading.LotSize),
		PositionLimit:    quant.Lots(cfg.Trading.PositionLimit),
		TickSize:         quant.PriceCents(cfg.Trading.TickSize),
		HistoryWindow:    cfg.Trading.HistoryWindow,
		DivergenceWindow: cfg.Trading.DivergenceWindow,
		KSigma:           cfg.Trading.KSigma.InexactFloat64(),
	}

	// Paper venue acks are produced synchronously inside the dispatch
	// loop, so they go through the local queue rather than the inbox: a
	// channel send from the loop's own goroutine would deadlock once the
	// inbox fills. The dispatcher is wired after the sink; emit only
	// fires once Run is live.
	var disp *engine.Dispatcher
	sink := execution.NewPaper(func(ev event.Event) {
		disp.EnqueueLocal(ev)
	}, cfg.Trading.FeeRate, slog.Default())

	eng := engine.New(params, sink, bootstrap.Journal, slog.Default())
	disp = engine.NewDispatcher(1024, eng, slog.Default())

	go disp.Run(ctx)
	slog.InfoContext(ctx, "dispatcher started",
		slog.Int64("lot_size", cfg.Trading.LotSize),
		slog.Int64("position_limit", cfg.Trading.PositionLimit),
		slog.String("k_sigma", cfg.Trading.KSigma.String()),
	)

	if cfg.Feed.Enabled {
		worker := feed.NewWorker(cfg.Feed.WSURL, disp.Inbox(), slog.Default())
		if err := worker.Connect(ctx); err != nil {
			slog.Error("failed to start feed", slog.Any("error", err))
			os.Exit(1)
		}
		defer worker.Stop()
		slog.InfoContext(ctx, "feed started", slog.String("url", cfg.Feed.WSURL))
	}

	slog.InfoContext(ctx, "pairs engine operational, press Ctrl+C to exit")

	<-ctx.Done()

	slog.Info("shutting down gracefully")
	if bootstrap.Journal != nil {
		etf := eng.Ledger().Position(domain.InstrumentETF)
		fut := eng.Ledger().Position(domain.InstrumentFuture)
		if err := bootstrap.Journal.RecordSession("shutdown", int64(etf), int64(fut)); err != nil {
			slog.Warn("failed to record session", slog.Any("error", err))
		}
	}
}
