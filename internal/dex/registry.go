// Package dex assembles the supported DEX account layouts into a decoder registry.
package dex

import (
	"fmt"

	"github.com/lugondev/go-carbon-dex/internal/config"
	"github.com/lugondev/go-carbon-dex/internal/decoder/meteora"
	"github.com/lugondev/go-carbon-dex/internal/decoder/pump"
	"github.com/lugondev/go-carbon-dex/internal/decoder/raydium"
	"github.com/lugondev/go-carbon-dex/internal/decoder/solfi"
	"github.com/lugondev/go-carbon-dex/pkg/decoder"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// Options selects between layout variants that cannot be told apart by size.
type Options struct {
	// DlmmLayout is config.DlmmLayoutCurrent or config.DlmmLayoutNoOracle.
	DlmmLayout string
}

// DefaultOptions registers the current DLMM layout.
func DefaultOptions() Options {
	return Options{DlmmLayout: config.DlmmLayoutCurrent}
}

// OptionsFromConfig derives Options from the decoder configuration.
func OptionsFromConfig(cfg config.DecoderConfig) Options {
	return Options{DlmmLayout: cfg.DlmmLayout}
}

// Schemas returns the schema set for opts.
func Schemas(opts Options) ([]decoder.Schema, error) {
	var dlmm decoder.Schema
	switch opts.DlmmLayout {
	case config.DlmmLayoutCurrent, "":
		dlmm = decoder.NewSchema(layout.SchemaMeteoraDlmmPool, meteora.DlmmPoolPolicy, meteora.DecodeDlmmPool, meteora.DlmmProgramID)
	case config.DlmmLayoutNoOracle:
		dlmm = decoder.NewSchema(layout.SchemaMeteoraDlmmPoolNoOracle, meteora.DlmmPoolNoOraclePolicy, meteora.DecodeDlmmPoolNoOracle, meteora.DlmmProgramID)
	default:
		return nil, fmt.Errorf("unknown DLMM layout %q", opts.DlmmLayout)
	}

	return []decoder.Schema{
		decoder.NewSchema(layout.SchemaPumpPool, pump.PoolPolicy, pump.DecodePool, pump.ProgramID),
		decoder.NewSchema(layout.SchemaRaydiumAmmV4Pool, raydium.AmmV4PoolPolicy, raydium.DecodeAmmV4Pool, raydium.AmmV4ProgramID),
		decoder.NewSchema(layout.SchemaRaydiumMarket, raydium.MarketPolicy, raydium.DecodeMarket,
			raydium.OpenBookProgramID, raydium.SerumV3ProgramID, raydium.AmmV4ProgramID),
		decoder.NewSchema(layout.SchemaRaydiumCpmmPool, raydium.CpmmPoolPolicy, raydium.DecodeCpmmPool, raydium.CpmmProgramID),
		decoder.NewSchema(layout.SchemaRaydiumClmmPool, raydium.ClmmPoolPolicy, raydium.DecodeClmmPool, raydium.ClmmProgramID),
		decoder.NewSchema(layout.SchemaSolFiPool, solfi.PoolPolicy, solfi.DecodePool, solfi.ProgramID),
		dlmm,
		decoder.NewSchema(layout.SchemaMeteoraOracle, meteora.OraclePolicy, meteora.DecodeOracle, meteora.DlmmProgramID),
		decoder.NewSchema(layout.SchemaMeteoraBinArray, meteora.BinArrayPolicy, meteora.DecodeBinArray, meteora.DlmmProgramID),
		decoder.NewSchema(layout.SchemaMeteoraPool, meteora.PoolPolicy, meteora.DecodePool, meteora.PoolsProgramID),
	}, nil
}

// NewRegistry builds the registry of every supported layout.
func NewRegistry(opts Options) (*decoder.Registry, error) {
	schemas, err := Schemas(opts)
	if err != nil {
		return nil, err
	}
	return decoder.NewRegistry(schemas...)
}

// NewDispatcher builds a dispatcher over NewRegistry(opts).
func NewDispatcher(opts Options) (*decoder.Dispatcher, error) {
	reg, err := NewRegistry(opts)
	if err != nil {
		return nil, err
	}
	return decoder.NewDispatcher(reg), nil
}
