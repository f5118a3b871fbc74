package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/dispatch"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
	"github.com/pulkyeet/sandwich-scanner/internal/storage"
)

// Session binds one chain's network handle, detector and dispatcher
type Session struct {
	*dispatch.Dispatcher

	Chain  eth.Chain
	client *eth.Client
	store  *storage.SandwichDB
}

func Open(ctx context.Context, cfg config.Config, chain eth.Chain) (*Session, error) {
	if err := chain.RequireEVM(); err != nil {
		return nil, err
	}
	if _, err := eth.LookupDEX(chain.ChainID, cfg.DEX); err != nil {
		return nil, err
	}

	client, err := eth.Dial(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", chain.Name, err)
	}
	s := &Session{Chain: chain, client: client}

	detCfg := sandwich.Config{ChainID: chain.ChainID, Lookback: cfg.Lookback}
	if cfg.CacheDB != "" {
		store, err := storage.Open(cfg.CacheDB)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open cache: %w", err)
		}
		s.store = store
		detCfg.Store = store
		log.Debug("Using sandwich cache", "path", cfg.CacheDB)
	}

	det, err := sandwich.NewDetector(client, detCfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Dispatcher, err = dispatch.New(det, client, cfg.DEX)
	if err != nil {
		s.Close()
		return nil, err
	}

	log.Info("Connected", "chain", chain.Name, "chainid", chain.ChainID, "backups", len(chain.Backups), "dex", cfg.DEX)
	return s, nil
}

func (s *Session) LatestBlock(ctx context.Context) (uint64, error) {
	return s.client.LatestBlock(ctx)
}

func (s *Session) Close() error {
	s.client.Close()
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
