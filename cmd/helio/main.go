package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heliochain/config"
	"heliochain/core/events"
	"heliochain/ledger/backing"
	"heliochain/ledger/ids"
	"heliochain/native/token"
	"heliochain/observability"
	"heliochain/observability/logging"
	"heliochain/precompile"
	"heliochain/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("HELIO_ENV"))
	logger := logging.Setup("helio", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	world := precompile.NewWorldLedgers(
		backing.NewKV(db, token.PrefixAccounts, token.EntityKeyCodec{}, func() *token.Account { return &token.Account{} }),
		backing.NewKV(db, token.PrefixTokens, token.EntityKeyCodec{}, func() *token.Token { return &token.Token{} }),
		backing.NewKV(db, token.PrefixRels, token.RelKeyCodec{}, func() *token.Relationship { return &token.Relationship{} }),
		backing.NewKV(db, token.PrefixNfts, token.NftKeyCodec{}, func() *token.UniqueToken { return &token.UniqueToken{} }),
		loggingEmitter{logger: logging.Component(logger, "events")},
	)

	props := token.Properties{
		MaxTokensPerAccount: cfg.MaxTokensPerAccount,
		AutoRenewEnabled:    cfg.AutoRenewEnabled,
		MinAutoRenewPeriod:  cfg.MinAutoRenewPeriod,
		MaxAutoRenewPeriod:  cfg.MaxAutoRenewPeriod,
	}
	idSource := ids.NewSource(firstFreeEntityNum(world, cfg.FirstEntityNum))
	views := token.NewTreasurySerialViews()

	engine := token.NewStore(idSource, props, world.SideEffects, views, world.Ledgers())
	engine.SetNowFunc(func() uint64 { return uint64(time.Now().Unix()) })
	engine.RebuildViews()

	pricing := precompile.NewPricingUtils(cfg.ReferenceGasPrice, cfg.GasPriceMultiplierPercent)
	historian := precompile.NewRecordsHistorian()
	bridge := precompile.NewTokenPrecompile(world, idSource, props, views, pricing, historian)
	bridge.SetMetrics(observability.Precompile())
	logger.Info("token precompile registered", slog.String("address", bridge.Address().Hex()))

	go serveMetrics(cfg.MetricsAddress, logger)

	logger.Info("node started",
		slog.String("network", cfg.NetworkName),
		slog.String("dataDir", cfg.DataDir),
		slog.Uint64("nextEntityNum", idSource.Peek()),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("node shutting down")
}

// firstFreeEntityNum resumes id issuance above every persisted token so a
// restart never reissues a committed id.
func firstFreeEntityNum(world *precompile.WorldLedgers, configured uint64) uint64 {
	first := configured
	for _, id := range world.Tokens.Keys() {
		if uint64(id) >= first {
			first = uint64(id) + 1
		}
	}
	return first
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", slog.Any("error", err))
	}
}

// loggingEmitter forwards ledger events to the structured log until a
// gossip layer subscribes.
type loggingEmitter struct {
	logger *slog.Logger
}

func (e loggingEmitter) Emit(evt events.Event) {
	e.logger.Info("ledger event", slog.String("type", evt.EventType()))
}
