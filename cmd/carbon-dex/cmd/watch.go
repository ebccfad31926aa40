package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/internal/datasource/rpc"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/filter"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/internal/output"
	"github.com/lugondev/go-carbon-dex/internal/pipeline"
	"github.com/lugondev/go-carbon-dex/internal/processor"
	solanaclient "github.com/lugondev/go-carbon-dex/internal/solana"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	watchPrograms    []string
	watchSkipStartup bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll accounts over RPC and print every change",
	Long: `Poll a set of accounts over RPC and print each new snapshot as it is decoded.

A snapshot is printed when its slot advances and its bytes changed since the
last one printed. Snapshots that match no layout are counted and logged at
debug level. Interrupt to stop; a summary of the decoded snapshots is
printed on exit.`,
	Example: `  carbon-dex watch --account 58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2 --interval 5s -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := parseKeys("account", cfg.Watch.Accounts)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			return cerrors.InvalidInput("no accounts to watch: pass --account or set watch.accounts")
		}
		programs, err := parseKeys("program", watchPrograms)
		if err != nil {
			return err
		}

		commitment, err := solanaclient.ParseCommitment(cfg.Solana.Commitment)
		if err != nil {
			return err
		}
		dsConfig := rpc.DefaultConfig(cfg.Solana.GetRPCEndpoint())
		dsConfig.CommitmentLevel = commitment
		dsConfig.PollInterval = cfg.Watch.PollInterval
		dsConfig.MaxRetries = cfg.Watch.MaxRetries
		dsConfig.RetryDelay = cfg.Watch.RetryDelay
		dsConfig.DedupeCacheSize = cfg.Watch.DedupeCacheSize

		ds, err := rpc.NewAccountMonitorDatasource(dsConfig, accounts)
		if err != nil {
			return err
		}

		d, err := newDispatcher()
		if err != nil {
			return err
		}
		printer, err := newPrinter(cmd.OutOrStdout())
		if err != nil {
			return err
		}

		var filters []filter.Filter
		if len(programs) > 0 {
			filters = append(filters, filter.NewOwnerFilter(programs...))
		}
		if watchSkipStartup {
			filters = append(filters, filter.NewSkipStartupFilter())
		}

		tally := output.NewTally()
		results := processor.NewChainedProcessor[output.Result](tally, printer.ResultProcessor(false))

		p, err := pipeline.NewPipelineBuilder().
			Logger(logger).
			Datasource(datasource.NewNamedDatasourceID("rpc"), ds.WithLogger(logger)).
			DispatcherPipe(d, output.AccountProcessor(results), filters...).
			Metrics(metrics.NewCollection(metrics.NewLogMetrics(logger))).
			HandleSignals(false).
			WithImmediateShutdown().
			Build()
		if err != nil {
			return err
		}

		logger.Info("watching accounts", "accounts", len(accounts), "rpc", dsConfig.RPCURL)
		if err := p.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return printer.PrintSummary(tally.Summary())
	},
}

func init() {
	watchCmd.Flags().StringSlice("account", nil, "account to watch (repeatable)")
	watchCmd.Flags().Duration("interval", 0, "poll interval (default from watch.poll_interval)")
	watchCmd.Flags().StringSliceVar(&watchPrograms, "program", nil, "only print accounts owned by these programs")
	watchCmd.Flags().BoolVar(&watchSkipStartup, "skip-startup", false, "do not print the first snapshot of each account")

	for key, name := range map[string]string{
		"watch.accounts":      "account",
		"watch.poll_interval": "interval",
	} {
		if err := viper.BindPFlag(key, watchCmd.Flags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
		}
	}

	rootCmd.AddCommand(watchCmd)
}

func parseKeys(kind string, values []string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(values))
	for _, v := range values {
		key, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return nil, cerrors.InvalidInput("invalid %s %q: %v", kind, v, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
