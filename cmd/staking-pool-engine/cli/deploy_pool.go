package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/algopool-labs/staking-pool-engine/internal/clients/ledgerclient"
	"github.com/algopool-labs/staking-pool-engine/internal/config"
	"github.com/algopool-labs/staking-pool-engine/internal/db"
	dbmodel "github.com/algopool-labs/staking-pool-engine/internal/db/model"
	"github.com/algopool-labs/staking-pool-engine/internal/observability/tracing"
	"github.com/algopool-labs/staking-pool-engine/internal/queue"
	"github.com/algopool-labs/staking-pool-engine/internal/services"
	"github.com/algopool-labs/staking-pool-engine/internal/types"
)

// DeployPoolCmd is an operator shortcut: it deploys a pool record without
// going through the running server's operation endpoint.
func DeployPoolCmd() *cobra.Command {
	var (
		admin       string
		stakedAsset uint64
		rewardAsset uint64
		begin       int64
		end         int64
	)

	cmd := &cobra.Command{
		Use:   "deploy-pool",
		Short: "Deploys a new staking pool record",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := tracing.InjectTraceID(cmd.Context())
			log := log.Ctx(ctx)

			cfg, err := config.New(GetConfigPath())
			if err != nil {
				return err
			}
			if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
				return err
			}
			dbClient, err := db.New(ctx, cfg.Db)
			if err != nil {
				return err
			}

			service := services.NewService(
				cfg,
				dbClient,
				ledgerclient.NewLedgerClient(&cfg.Ledger),
				queue.NoopPublisher{},
			)
			pool, serviceErr := service.Deploy(ctx, admin, &types.DeployRequest{
				StakedAssetID:  stakedAsset,
				RewardAssetID:  rewardAsset,
				BeginTimestamp: begin,
				EndTimestamp:   end,
			})
			if serviceErr != nil {
				return serviceErr
			}

			log.Info().Str("pool_id", pool.PoolID).Msg("pool deployed")
			return nil
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "address that administers the pool")
	cmd.Flags().Uint64Var(&stakedAsset, "staked-asset", 0, "asset id participants stake")
	cmd.Flags().Uint64Var(&rewardAsset, "reward-asset", 0, "asset id rewards are paid in")
	cmd.Flags().Int64Var(&begin, "begin", 0, "reward window begin (unix seconds)")
	cmd.Flags().Int64Var(&end, "end", 0, "reward window end (unix seconds)")
	_ = cmd.MarkFlagRequired("admin")
	_ = cmd.MarkFlagRequired("staked-asset")
	_ = cmd.MarkFlagRequired("reward-asset")
	_ = cmd.MarkFlagRequired("begin")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
