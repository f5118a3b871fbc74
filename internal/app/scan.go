package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/dispatch"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

// Scanner is what the block scanner needs from a session
type Scanner interface {
	BlockScanner
	ScanBlock(ctx context.Context, block uint64, dex string) dispatch.Report
	ScanAddress(ctx context.Context, address common.Address, offset int, dex string) dispatch.Report
	Close() error
}

type ScanOpener func(ctx context.Context, cfg config.Config, chain eth.Chain) (Scanner, error)

func OpenScanner(ctx context.Context, cfg config.Config, chain eth.Chain) (Scanner, error) {
	s, err := Open(ctx, cfg, chain)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type ScanOptions struct {
	Block uint64
	// a non-zero From or To selects a range scan
	From, To uint64
	// non-nil selects an address scan
	Address *common.Address
	Offset  int
}

func (o ScanOptions) isRange() bool {
	return o.From != 0 || o.To != 0
}

// Validate rejects option combinations that can never run
func (o ScanOptions) Validate() error {
	if o.Address != nil && o.Offset < 1 {
		return sandwich.ErrInvalidOffset
	}
	if o.Address == nil && o.isRange() && o.From > o.To {
		return fmt.Errorf("start block %d is after end block %d", o.From, o.To)
	}
	return nil
}

// RunScan connects to chain and runs one block, range or address scan,
// printing to w. Connection and query failures are logged and printed as an
// empty result.
func RunScan(ctx context.Context, w io.Writer, cfg config.Config, chain eth.Chain, opts ScanOptions, open ScanOpener) []sandwich.Sandwich {
	// one budget covers connecting plus a single-block query
	budget, cancel := context.WithTimeout(ctx, cfg.RPCTimeout)
	defer cancel()

	s, err := open(budget, cfg, chain)
	if err != nil {
		log.Error("Connection failed", "chain", chain.Name, "err", err)
		dispatch.PrintReport(w, dispatch.Report{Err: err})
		return nil
	}
	defer s.Close()

	switch {
	case opts.Address != nil:
		fmt.Fprintf(w, "Checking the last %d %s blocks for sandwiches against %s (offset %d)...\n",
			cfg.Lookback, chain.Name, opts.Address.Hex(), opts.Offset)
		// walks many blocks, so only the caller bounds it
		report := s.ScanAddress(ctx, *opts.Address, opts.Offset, cfg.DEX)
		dispatch.PrintReport(w, report)
		return report.Sandwiches

	case opts.isRange():
		fmt.Fprintf(w, "Scanning %s blocks %d to %d for %s sandwiches...\n", chain.Name, opts.From, opts.To, cfg.DEX)
		report, err := NewRunner(s, cfg.DEX, cfg.RPCTimeout).ScanRange(ctx, opts.From, opts.To)
		if report == nil {
			log.Error("Range scan failed", "err", err)
			dispatch.PrintReport(w, dispatch.Report{Err: err})
			return nil
		}
		if err != nil {
			log.Warn("Range scan interrupted", "err", err)
		}
		report.Print(w)
		dispatch.PrintSandwiches(w, report.Sandwiches)
		return report.Sandwiches

	default:
		fmt.Fprintf(w, "Scanning %s block %d for %s sandwiches...\n", chain.Name, opts.Block, cfg.DEX)
		report := s.ScanBlock(budget, opts.Block, cfg.DEX)
		dispatch.PrintReport(w, report)
		return report.Sandwiches
	}
}
