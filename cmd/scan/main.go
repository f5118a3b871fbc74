package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/app"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
	"github.com/pulkyeet/sandwich-scanner/internal/export"
	"github.com/pulkyeet/sandwich-scanner/internal/logging"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	chainKey := flag.String("chain", eth.Base.Key, "Chain key (ETH, BSC, BASE)")
	blockNum := flag.Uint64("block", 12345678, "Block number to scan")
	dex := flag.String("dex", cfg.DEX, "DEX name (e.g. UniswapV2, UniswapV3, PancakeSwapV2)")
	fromBlock := flag.Uint64("from", 0, "First block of a range scan")
	toBlock := flag.Uint64("to", 0, "Last block of a range scan")
	address := flag.String("address", "", "Scan recent blocks for sandwiches against this address instead")
	offset := flag.Int("offset", cfg.Offset, "Adjacent transactions inspected per address transaction")
	out := flag.String("out", "", "Write results to this parquet file")
	cache := flag.String("cache", cfg.CacheDB, "SQLite file caching block results (empty disables)")
	flag.Parse()

	logging.Init(os.Stderr, cfg.LogLevel)
	cfg.DEX = *dex
	cfg.CacheDB = *cache

	chain, err := eth.ChainByKey(*chainKey)
	if err != nil {
		log.Crit("Unknown chain", "chain", *chainKey, "err", err)
	}
	chain = cfg.Chain(chain)

	opts := app.ScanOptions{Block: *blockNum, From: *fromBlock, To: *toBlock, Offset: *offset}
	if *address != "" {
		if !common.IsHexAddress(*address) {
			log.Crit("Invalid address", "address", *address)
		}
		addr := common.HexToAddress(*address)
		opts.Address = &addr
	}
	if err := opts.Validate(); err != nil {
		log.Crit("Invalid flags", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	found := app.RunScan(ctx, os.Stdout, cfg, chain, opts, app.OpenScanner)

	if *out != "" {
		if err := export.WriteParquet(*out, chain.ChainID, found); err != nil {
			log.Error("Parquet export failed", "path", *out, "err", err)
		} else {
			log.Info("Wrote parquet file", "path", *out, "rows", len(found))
		}
	}

	fmt.Println("\n✅ Scan complete")
}
