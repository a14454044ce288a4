package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"market-maker-engine/config"
	"market-maker-engine/infrastructure/logger"
	"market-maker-engine/internal/engine"
	"market-maker-engine/market"
	"market-maker-engine/metrics"
	"market-maker-engine/sim"
)

// 本地纸面模拟：随机游走行情驱动决策引擎，成交由内存场所撮合后回报。
// 不会连接真实交易所。
func main() {
	cfgPath := flag.String("config", "", "path to YAML config (defaults when empty)")
	steps := flag.Int("steps", 500, "number of simulation steps")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	policy := flag.String("policy", "", "override policy: skew|imbalance")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address (e.g. :9100)")
	rejectRate := flag.Float64("rejectRate", 0, "venue: limit order reject probability")
	cancelFailRate := flag.Float64("cancelFailRate", 0, "venue: cancel error probability")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath, *policy)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	var m *metrics.Metrics
	addr := *metricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Listen
	}
	if addr != "" {
		m = metrics.New(cfg.Metrics.Namespace)
		srv := metrics.StartMetricsServer(addr, m)
		defer srv.Close()
		lg.Info("metrics server started", zap.String("addr", addr))
	}

	rng := rand.New(rand.NewSource(*seed))
	venue := sim.NewVenue(sim.VenueConfig{
		RejectRate:     *rejectRate,
		CancelFailRate: *cancelFailRate,
	}, rng, lg.Named("venue"))

	rc := sim.DefaultRunnerConfig()
	rc.InitialCash = cfg.InitialCash
	runner, err := sim.NewRunner(rc, venue, rng, lg.Named("sim"))
	if err != nil {
		log.Fatalf("init runner: %v", err)
	}

	eng, err := engine.New(cfg, venue,
		engine.WithLogger(lg.Named("engine")),
		engine.WithMetrics(m),
		engine.WithClock(runner.Clock()),
	)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx, eng, *steps)
	if err != nil {
		lg.Warn("simulation interrupted", zap.Error(err))
	}
	eng.CancelAll()

	st := eng.Stats()
	fmt.Printf("policy=%s seed=%d steps=%d\n", eng.Policy().Name(), *seed, res.Steps)
	fmt.Printf("events: book=%d trades=%d limitFills=%d marketFills=%d\n",
		res.BookUpdates, res.Trades, res.LimitFills, res.MarketFills)
	fmt.Printf("engine: cycles=%d throttled=%d skips=%d scalps=%d hedges=%d recovered=%d\n",
		st.Cycles, st.Throttled, st.Skips, st.Scalps, st.Hedges, st.Recovered)
	fmt.Printf("orders placed=%d cancelled=%d resting=%d\n",
		len(venue.Placed), len(venue.Cancelled), runner.Result().Resting)

	insts := make([]market.Instrument, 0, len(res.Positions))
	for inst := range res.Positions {
		insts = append(insts, inst)
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i] < insts[j] })
	for _, inst := range insts {
		fmt.Printf("position %s: %.4f\n", inst, res.Positions[inst])
	}
	fmt.Printf("cash: %.2f\n", res.Cash)
	fmt.Printf("portfolio value: %.2f\n", eng.PortfolioValue())
}

func loadConfig(path, policy string) (config.AppConfig, error) {
	if path == "" {
		cfg := config.Default()
		if policy != "" {
			cfg.Policy = policy
		}
		config.ApplyPolicyDefaults(&cfg)
		return cfg, config.Validate(cfg)
	}
	if policy != "" {
		os.Setenv("MM_POLICY", policy)
	}
	return config.LoadWithEnvOverrides(path)
}
