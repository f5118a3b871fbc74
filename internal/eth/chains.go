package eth

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedChain = errors.New("chain is not EVM-compatible")

// Chain is one of the supported network presets
type Chain struct {
	Key     string
	Name    string
	RPC     string
	Backups []string
	ChainID int64
	EVM     bool
}

var (
	Ethereum = Chain{
		Key:     "ETH",
		Name:    "Ethereum",
		RPC:     "https://eth-mainnet.g.alchemy.com/v2/YOUR_KEY",
		ChainID: 1,
		EVM:     true,
	}
	BNBChain = Chain{
		Key:     "BSC",
		Name:    "BNB Chain",
		RPC:     "https://bsc-dataseed.binance.org",
		ChainID: 56,
		EVM:     true,
	}
	Base = Chain{
		Key:  "BASE",
		Name: "Base",
		RPC:  "https://mainnet.base.org",
		Backups: []string{
			"https://base.blockpi.network/v1/rpc/public",
			"https://base.meowrpc.com",
		},
		ChainID: 8453,
		EVM:     true,
	}
	// listed for completeness, the detector only speaks EVM JSON-RPC
	Solana = Chain{
		Key:     "SOL",
		Name:    "Solana",
		RPC:     "https://api.mainnet-beta.solana.com",
		ChainID: -1,
	}
)

// Chains returns the presets in menu order
func Chains() []Chain {
	return []Chain{Ethereum, BNBChain, Base, Solana}
}

// ChainByIndex resolves a 1-based menu selection
func ChainByIndex(i int) (Chain, error) {
	all := Chains()
	if i < 1 || i > len(all) {
		return Chain{}, fmt.Errorf("invalid chain selection %d (1-%d)", i, len(all))
	}
	return all[i-1], nil
}

func ChainByKey(key string) (Chain, error) {
	for _, c := range Chains() {
		if strings.EqualFold(c.Key, strings.TrimSpace(key)) {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("unknown chain %q (known: ETH, BSC, BASE, SOL)", key)
}

// RequireEVM fails for presets the EVM client cannot talk to
func (c Chain) RequireEVM() error {
	if !c.EVM {
		return fmt.Errorf("%s: %w", c.Name, ErrUnsupportedChain)
	}
	return nil
}

// WithEndpoints returns a copy of the preset pointed at different RPC endpoints.
// Empty values keep the preset's own.
func (c Chain) WithEndpoints(rpcURL string, backups []string) Chain {
	out := c
	if rpcURL != "" {
		out.RPC = rpcURL
	}
	if len(backups) > 0 {
		out.Backups = append([]string(nil), backups...)
	} else {
		out.Backups = append([]string(nil), c.Backups...)
	}
	return out
}

func (c Chain) String() string {
	return c.Name
}
