package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pulkyeet/sandwich-scanner/internal/eth"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

const (
	DefaultDEX        = "UniswapV2"
	DefaultOffset     = 1
	DefaultRPCTimeout = 30 * time.Second
	DefaultLogLevel   = "info"
)

type Config struct {
	// endpoint overrides keyed by chain key (ETH, BSC, BASE, SOL)
	RPCURLs    map[string]string
	BackupURLs map[string][]string

	DEX        string
	Offset     int
	Lookback   uint64
	CacheDB    string
	RPCTimeout time.Duration
	LogLevel   string
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	cfg := Config{
		RPCURLs:    make(map[string]string),
		BackupURLs: make(map[string][]string),
		DEX:        DefaultDEX,
		Offset:     DefaultOffset,
		Lookback:   sandwich.DefaultLookback,
		RPCTimeout: DefaultRPCTimeout,
		LogLevel:   DefaultLogLevel,
	}

	for _, chain := range eth.Chains() {
		if raw := lookupTrimmed(source, chain.Key+"_RPC_URL"); raw != "" {
			cfg.RPCURLs[chain.Key] = raw
		}
		if backups := parseList(source, chain.Key+"_BACKUP_RPC_URLS"); len(backups) > 0 {
			cfg.BackupURLs[chain.Key] = backups
		}
	}
	// older setups only export ALCHEMY_URL
	if _, ok := cfg.RPCURLs[eth.Ethereum.Key]; !ok {
		if raw := lookupTrimmed(source, "ALCHEMY_URL"); raw != "" {
			cfg.RPCURLs[eth.Ethereum.Key] = raw
		}
	}

	if raw := lookupTrimmed(source, "SANDWICH_DEX"); raw != "" {
		cfg.DEX = raw
	}

	offset, err := parseUintEnv(source, "SANDWICH_OFFSET", DefaultOffset)
	if err != nil {
		return Config{}, err
	}
	if offset < 1 {
		return Config{}, fmt.Errorf("invalid SANDWICH_OFFSET: %w", sandwich.ErrInvalidOffset)
	}
	cfg.Offset = int(offset)

	lookback, err := parseUintEnv(source, "SANDWICH_LOOKBACK", sandwich.DefaultLookback)
	if err != nil {
		return Config{}, err
	}
	if lookback == 0 {
		return Config{}, errors.New("SANDWICH_LOOKBACK must be positive")
	}
	cfg.Lookback = lookback

	cfg.CacheDB = lookupTrimmed(source, "SANDWICH_CACHE_DB")

	if raw := lookupTrimmed(source, "RPC_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RPC_TIMEOUT: %w", err)
		}
		if timeout <= 0 {
			return Config{}, errors.New("RPC_TIMEOUT must be positive")
		}
		cfg.RPCTimeout = timeout
	}

	if raw := lookupTrimmed(source, "LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}

	return cfg, nil
}

// Chain returns the preset with any configured endpoint overrides applied
func (c Config) Chain(base eth.Chain) eth.Chain {
	return base.WithEndpoints(c.RPCURLs[base.Key], c.BackupURLs[base.Key])
}

func lookupTrimmed(source EnvSource, key string) string {
	raw, _ := source.Lookup(key)
	return strings.TrimSpace(raw)
}

func parseUintEnv(source EnvSource, key string, defaultValue uint64) (uint64, error) {
	raw := lookupTrimmed(source, key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseList(source EnvSource, key string) []string {
	raw := lookupTrimmed(source, key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, item := range strings.Split(raw, ",") {
		if value := strings.TrimSpace(item); value != "" {
			values = append(values, value)
		}
	}
	return values
}
