package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/console"
	"github.com/pulkyeet/sandwich-scanner/internal/dispatch"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
)

var (
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrInvalidHash    = errors.New("invalid transaction hash")
)

// Querier is what the interactive flow needs from a session
type Querier interface {
	ScanAddress(ctx context.Context, address common.Address, offset int, dex string) dispatch.Report
	CheckTransaction(ctx context.Context, hash common.Hash) dispatch.Verdict
	Close() error
}

// Opener connects to a chain; OpenQuerier is the production one
type Opener func(ctx context.Context, cfg config.Config, chain eth.Chain) (Querier, error)

func OpenQuerier(ctx context.Context, cfg config.Config, chain eth.Chain) (Querier, error) {
	s, err := Open(ctx, cfg, chain)
	if err != nil {
		return nil, err
	}
	return s, nil
}

const (
	modeAddress = iota
	modeHash
)

// RunInteractive asks for a chain, a mode and a value, then runs one query.
// The prompt stays owned by the caller.
func RunInteractive(ctx context.Context, p *console.Prompt, cfg config.Config, open Opener) error {
	chains := eth.Chains()
	names := make([]string, len(chains))
	for i, c := range chains {
		names[i] = c.Name
	}

	idx, err := p.Choose("Select a chain:", names)
	if err != nil {
		return err
	}
	chain, err := eth.ChainByIndex(idx + 1)
	if err != nil {
		return err
	}
	if err := chain.RequireEVM(); err != nil {
		p.Printf("%s is not supported by the EVM detector yet.\n", chain.Name)
		return err
	}
	chain = cfg.Chain(chain)

	mode, err := p.Choose("Select detection mode:", []string{"By wallet address", "By transaction hash"})
	if err != nil {
		return err
	}

	var (
		address common.Address
		hash    common.Hash
	)
	switch mode {
	case modeAddress:
		raw, err := p.Ask("Enter wallet address: ")
		if err != nil {
			return err
		}
		if !common.IsHexAddress(raw) {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
		}
		address = common.HexToAddress(raw)
	case modeHash:
		raw, err := p.Ask("Enter transaction hash: ")
		if err != nil {
			return err
		}
		if hash, err = parseHash(raw); err != nil {
			return err
		}
	}

	// one budget covers connecting plus a hash check
	budget, cancel := context.WithTimeout(ctx, cfg.RPCTimeout)
	defer cancel()

	q, err := open(budget, cfg, chain)
	if err != nil {
		log.Error("Connection failed", "chain", chain.Name, "err", err)
		p.Printf("❌ Could not connect to %s: %v\n", chain.Name, err)
		return nil
	}
	defer q.Close()

	p.Printf("\nChecking on %s...\n", chain.Name)
	switch mode {
	case modeAddress:
		// walks the lookback window, bounded only by the caller
		dispatch.PrintReport(p.Writer(), q.ScanAddress(ctx, address, cfg.Offset, cfg.DEX))
	case modeHash:
		dispatch.PrintVerdict(p.Writer(), q.CheckTransaction(budget, hash))
	}
	return nil
}

func parseHash(raw string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, raw)
	}
	return common.BytesToHash(b), nil
}
