package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

// BlockScanner is the strict block query of a dispatcher
type BlockScanner interface {
	Block(ctx context.Context, block uint64, dex string) ([]sandwich.Sandwich, error)
}

type RangeReport struct {
	StartBlock uint64
	EndBlock   uint64
	Scanned    int
	Failed     []uint64
	Sandwiches []sandwich.Sandwich
	Elapsed    time.Duration
}

// Runner scans a block range one block at a time
type Runner struct {
	scanner      BlockScanner
	dex          string
	blockTimeout time.Duration
	// progress line every N blocks, 0 disables
	progressEvery uint64
}

func NewRunner(scanner BlockScanner, dex string, blockTimeout time.Duration) *Runner {
	return &Runner{scanner: scanner, dex: dex, blockTimeout: blockTimeout, progressEvery: 10}
}

// ScanRange scans start..end inclusive. A failing block is logged and skipped;
// cancelling ctx stops the scan and returns what was found so far.
func (r *Runner) ScanRange(ctx context.Context, startBlock, endBlock uint64) (*RangeReport, error) {
	if startBlock > endBlock {
		return nil, fmt.Errorf("start block %d is after end block %d", startBlock, endBlock)
	}

	report := &RangeReport{StartBlock: startBlock, EndBlock: endBlock}
	total := endBlock - startBlock + 1
	startTime := time.Now()

	for blockNum := startBlock; blockNum <= endBlock; blockNum++ {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(startTime)
			return report, err
		}

		blockCtx, cancel := r.blockContext(ctx)
		found, err := r.scanner.Block(blockCtx, blockNum, r.dex)
		cancel()
		if err != nil {
			log.Warn("Block scan failed", "block", blockNum, "err", err)
			report.Failed = append(report.Failed, blockNum)
			continue
		}
		report.Scanned++
		report.Sandwiches = append(report.Sandwiches, found...)

		done := blockNum - startBlock + 1
		if r.progressEvery > 0 && done%r.progressEvery == 0 {
			log.Info("Scan progress", "done", done, "total", total,
				"pct", fmt.Sprintf("%.1f%%", float64(done)/float64(total)*100),
				"found", len(report.Sandwiches), "elapsed", time.Since(startTime).Round(time.Second))
		}
	}

	report.Elapsed = time.Since(startTime)
	return report, nil
}

func (r *Runner) blockContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.blockTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.blockTimeout)
}

func (r *RangeReport) Print(w io.Writer) {
	fmt.Fprintf(w, "\nBlocks %d-%d: scanned %d, failed %d, sandwiches %d (%s)\n",
		r.StartBlock, r.EndBlock, r.Scanned, len(r.Failed), len(r.Sandwiches), r.Elapsed.Round(time.Millisecond))
	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "⚠️  Failed blocks: %v\n", r.Failed)
	}

	attackers := make(map[string]int)
	for _, s := range r.Sandwiches {
		attackers[s.Attacker().Hex()]++
	}
	if len(attackers) > 0 {
		fmt.Fprintf(w, "Distinct attackers: %d\n", len(attackers))
	}
}
