package raydium

import (
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// CpmmPoolSize is the CPMM PoolState account size.
	CpmmPoolSize = 637

	cpmmReservedSize = 31 * 8
)

// CpmmPoolPolicy is a minimum: CPMM pool accounts are checked with >=.
var CpmmPoolPolicy = layout.AtLeast(CpmmPoolSize)

// CpmmPool is a Raydium CPMM pool account.
type CpmmPool struct {
	Discriminator      uint64           `json:"discriminator"`
	AmmConfig          solana.PublicKey `json:"amm_config"`
	PoolCreator        solana.PublicKey `json:"pool_creator"`
	Token0Vault        solana.PublicKey `json:"token_0_vault"`
	Token1Vault        solana.PublicKey `json:"token_1_vault"`
	LpMint             solana.PublicKey `json:"lp_mint"`
	Token0Mint         solana.PublicKey `json:"token_0_mint"`
	Token1Mint         solana.PublicKey `json:"token_1_mint"`
	Token0Program      solana.PublicKey `json:"token_0_program"`
	Token1Program      solana.PublicKey `json:"token_1_program"`
	ObservationKey     solana.PublicKey `json:"observation_key"`
	AuthBump           uint8            `json:"auth_bump"`
	Status             uint8            `json:"status"`
	LpMintDecimals     uint8            `json:"lp_mint_decimals"`
	Mint0Decimals      uint8            `json:"mint_0_decimals"`
	Mint1Decimals      uint8            `json:"mint_1_decimals"`
	LpSupply           uint64           `json:"lp_supply"`
	ProtocolFeesToken0 uint64           `json:"protocol_fees_token_0"`
	ProtocolFeesToken1 uint64           `json:"protocol_fees_token_1"`
	FundFeesToken0     uint64           `json:"fund_fees_token_0"`
	FundFeesToken1     uint64           `json:"fund_fees_token_1"`
	OpenTime           uint64           `json:"open_time"`
	RecentEpoch        uint64           `json:"recent_epoch"`
}

// Schema implements layout.Record.
func (*CpmmPool) Schema() layout.SchemaID { return layout.SchemaRaydiumCpmmPool }

// DecodeCpmmPool decodes a Raydium CPMM pool account.
func DecodeCpmmPool(data []byte) (*CpmmPool, error) {
	r, err := layout.Open(layout.SchemaRaydiumCpmmPool, CpmmPoolPolicy, data, layout.NoDiscriminator)
	if err != nil {
		return nil, err
	}

	p := &CpmmPool{
		Discriminator:      r.U64(),
		AmmConfig:          r.Key(),
		PoolCreator:        r.Key(),
		Token0Vault:        r.Key(),
		Token1Vault:        r.Key(),
		LpMint:             r.Key(),
		Token0Mint:         r.Key(),
		Token1Mint:         r.Key(),
		Token0Program:      r.Key(),
		Token1Program:      r.Key(),
		ObservationKey:     r.Key(),
		AuthBump:           r.U8(),
		Status:             r.U8(),
		LpMintDecimals:     r.U8(),
		Mint0Decimals:      r.U8(),
		Mint1Decimals:      r.U8(),
		LpSupply:           r.U64(),
		ProtocolFeesToken0: r.U64(),
		ProtocolFeesToken1: r.U64(),
		FundFeesToken0:     r.U64(),
		FundFeesToken1:     r.U64(),
		OpenTime:           r.U64(),
		RecentEpoch:        r.U64(),
	}
	r.Skip(cpmmReservedSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
