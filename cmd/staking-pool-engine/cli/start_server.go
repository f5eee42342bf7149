package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/algopool-labs/staking-pool-engine/internal/api"
	"github.com/algopool-labs/staking-pool-engine/internal/clients/ledgerclient"
	"github.com/algopool-labs/staking-pool-engine/internal/config"
	"github.com/algopool-labs/staking-pool-engine/internal/db"
	dbmodel "github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/observability/metrics"
	"github.com/algopool-labs/staking-pool-engine/internal/observability/tracing"
	"github.com/algopool-labs/staking-pool-engine/internal/queue"
	"github.com/algopool-labs/staking-pool-engine/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking pool engine server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up pool db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	var ledgerClient ledgerclient.LedgerInterface = ledgerclient.NewLedgerClient(&cfg.Ledger)
	ledgerClient = ledgerclient.NewLedgerClientWithMetrics(ledgerClient)

	var eventPublisher queue.EventPublisher = queue.NoopPublisher{}
	if cfg.Queue.Enabled() {
		qm, err := queue.NewQueueManager(&cfg.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("error while creating queue manager")
		}
		defer qm.Shutdown()
		eventPublisher = qm
	}

	service := services.NewService(cfg, dbClient, ledgerClient, eventPublisher)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.StartPollers(ctx)

	apiServer := api.New(&cfg.Api, service)
	go func() {
		<-ctx.Done()
		if err := apiServer.Shutdown(cmd.Context()); err != nil {
			log.Error().Err(err).Msg("error while shutting down api server")
		}
	}()
	return apiServer.Start()
}
