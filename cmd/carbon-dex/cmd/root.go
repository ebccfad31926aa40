package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lugondev/go-carbon-dex/internal/common"
	"github.com/lugondev/go-carbon-dex/internal/config"
	"github.com/lugondev/go-carbon-dex/internal/dex"
	"github.com/lugondev/go-carbon-dex/internal/output"
	"github.com/lugondev/go-carbon-dex/pkg/decoder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "carbon-dex",
	Short: "Decode Solana DEX account snapshots",
	Long: `carbon-dex decodes raw account data of Solana DEX programs into typed records.

Supported layouts:
- Pump AMM pools
- Raydium AMM v4 pools, Serum/OpenBook markets, CPMM and CLMM pools
- SolFi pools
- Meteora DLMM pools, oracles and bin arrays, and Meteora dynamic pools`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupt and SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.carbon-dex.yaml or $HOME/.carbon-dex.yaml)")
	flags.String("rpc", "", "Solana RPC endpoint (overrides --network)")
	flags.String("network", "mainnet", "Solana network (mainnet, devnet, testnet, localnet)")
	flags.String("commitment", "confirmed", "RPC commitment (processed, confirmed, finalized)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.StringP("output", "o", "text", "output format (text, json or yaml)")
	flags.String("dlmm-layout", config.DlmmLayoutCurrent, "Meteora DLMM pool layout (current or no_oracle)")

	for key, name := range map[string]string{
		"solana.rpc":          "rpc",
		"solana.network":      "network",
		"solana.commitment":   "commitment",
		"log.level":           "log-level",
		"log.format":          "log-format",
		"output.format":       "output",
		"decoder.dlmm_layout": "dlmm-layout",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
		}
	}
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	cobra.CheckErr(err)
	cfg = loaded

	logger = common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
}

func newDispatcher() (*decoder.Dispatcher, error) {
	return dex.NewDispatcher(dex.OptionsFromConfig(cfg.Decoder))
}

func newPrinter(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format), nil
}
