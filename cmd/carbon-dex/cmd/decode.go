package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/internal/datasource/replay"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	solanaclient "github.com/lugondev/go-carbon-dex/internal/solana"
	"github.com/lugondev/go-carbon-dex/pkg/types"
	"github.com/spf13/cobra"
)

var (
	decodeOwner    string
	decodeAddress  string
	decodeEncoding string
	decodeFile     string
	decodeSlot     uint64
)

var decodeCmd = &cobra.Command{
	Use:   "decode [data]",
	Short: "Decode one account buffer",
	Long: `Decode a single account buffer owned by --owner.

The buffer is read from, in order of preference:
- --file (raw bytes, "-" for stdin)
- the data argument, in --encoding
- the RPC endpoint, by fetching --address

When the buffer is fetched, the owner reported by the node is used unless
--owner is given.`,
	Example: `  carbon-dex decode --owner pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA <base64>
  carbon-dex decode --owner 675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8 --file pool.bin
  carbon-dex decode --address 58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2 -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := decodeInput(cmd, args)
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

		record, decodeErr := d.DecodeUpdate(update)
		if decodeErr != nil {
			if err := printer.PrintError(update, decodeErr); err != nil {
				return err
			}
			return decodeErr
		}
		return printer.PrintRecord(update, record)
	},
}

func init() {
	decodeCmd.Flags().StringVar(&decodeOwner, "owner", "", "owning program of the buffer")
	decodeCmd.Flags().StringVar(&decodeAddress, "address", "", "account address (fetched over RPC when no data is given)")
	decodeCmd.Flags().StringVarP(&decodeEncoding, "encoding", "e", replay.EncodingBase64, "encoding of the data argument (base64, base58 or hex)")
	decodeCmd.Flags().StringVarP(&decodeFile, "file", "f", "", "read raw account bytes from a file")
	decodeCmd.Flags().Uint64Var(&decodeSlot, "slot", 0, "slot to report with the record")

	rootCmd.AddCommand(decodeCmd)
}

// decodeInput assembles the update to decode from the command's flags and args.
func decodeInput(cmd *cobra.Command, args []string) (types.RawAccountUpdate, error) {
	update := types.RawAccountUpdate{Slot: decodeSlot}

	if decodeAddress != "" {
		address, err := solana.PublicKeyFromBase58(decodeAddress)
		if err != nil {
			return update, cerrors.InvalidInput("invalid --address %q: %v", decodeAddress, err)
		}
		update.Address = address
	}
	if decodeOwner != "" {
		owner, err := solana.PublicKeyFromBase58(decodeOwner)
		if err != nil {
			return update, cerrors.InvalidInput("invalid --owner %q: %v", decodeOwner, err)
		}
		update.Owner = owner
	}

	switch {
	case decodeFile != "":
		data, err := readFile(cmd.InOrStdin(), decodeFile)
		if err != nil {
			return update, err
		}
		update.Data = data
	case len(args) == 1:
		data, err := replay.DecodeData(args[0], decodeEncoding)
		if err != nil {
			return update, cerrors.InvalidInput("invalid %s data: %v", decodeEncoding, err)
		}
		update.Data = data
	case decodeAddress != "":
		return fetchAccount(cmd, update)
	default:
		return update, cerrors.InvalidInput("no account data: pass data, --file or --address")
	}

	if update.Owner.IsZero() {
		return update, cerrors.InvalidInput("--owner is required when decoding local data")
	}
	return update, nil
}

func fetchAccount(cmd *cobra.Command, want types.RawAccountUpdate) (types.RawAccountUpdate, error) {
	commitment, err := solanaclient.ParseCommitment(cfg.Solana.Commitment)
	if err != nil {
		return want, err
	}
	endpoint := cfg.Solana.GetRPCEndpoint()
	logger.Debug("fetching account", "address", want.Address, "rpc", endpoint)

	update, err := solanaclient.NewClient(endpoint, commitment).GetAccount(cmd.Context(), want.Address)
	if err != nil {
		return want, fmt.Errorf("failed to fetch %s: %w", want.Address, err)
	}
	if !want.Owner.IsZero() {
		if !want.Owner.Equals(update.Owner) {
			logger.Warn("owner differs from on-chain owner", "flag", want.Owner, "account", update.Owner)
		}
		update.Owner = want.Owner
	}
	if want.Slot != 0 {
		update.Slot = want.Slot
	}
	return update, nil
}

func readFile(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
