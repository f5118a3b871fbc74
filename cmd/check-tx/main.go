package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/app"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/dispatch"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
	"github.com/pulkyeet/sandwich-scanner/internal/logging"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	chainKey := flag.String("chain", eth.Base.Key, "Chain key (ETH, BSC, BASE)")
	txHash := flag.String("tx", "", "Transaction hash to check")
	dex := flag.String("dex", cfg.DEX, "DEX name (e.g. UniswapV2, UniswapV3, PancakeSwapV2)")
	cache := flag.String("cache", cfg.CacheDB, "SQLite file caching block results (empty disables)")
	flag.Parse()

	logging.Init(os.Stderr, cfg.LogLevel)
	cfg.DEX = *dex
	cfg.CacheDB = *cache

	raw, err := hexutil.Decode(*txHash)
	if err != nil || len(raw) != common.HashLength {
		log.Crit("Invalid transaction hash, pass -tx 0x<64 hex chars>", "tx", *txHash)
	}
	hash := common.BytesToHash(raw)

	chain, err := eth.ChainByKey(*chainKey)
	if err != nil {
		log.Crit("Unknown chain", "chain", *chainKey, "err", err)
	}
	chain = cfg.Chain(chain)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RPCTimeout)
	defer cancel()

	session, err := app.Open(ctx, cfg, chain)
	if err != nil {
		log.Error("Failed to open session", "chain", chain.Name, "err", err)
		dispatch.PrintVerdict(os.Stdout, dispatch.Verdict{Hash: hash, Err: err})
		return
	}
	defer session.Close()

	fmt.Printf("Checking %s on %s (%s)...\n", hash.Hex(), chain.Name, cfg.DEX)
	dispatch.PrintVerdict(os.Stdout, session.CheckTransaction(ctx, hash))
}
