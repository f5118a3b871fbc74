package sandwich

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
)

var ErrInvalidOffset = errors.New("offset must be at least 1")

const (
	DefaultLookback  = 50
	DefaultCacheSize = 128
)

// Source is the chain access the detector needs; *eth.Client satisfies it
type Source interface {
	BlockTransactions(ctx context.Context, number uint64) ([]eth.Tx, error)
	BlockReceipts(ctx context.Context, number uint64) ([]*types.Receipt, error)
	LatestBlock(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Store persists block scan results between runs
type Store interface {
	Load(chainID int64, block uint64, dex string) ([]Sandwich, bool, error)
	Save(chainID int64, block uint64, dex string, found []Sandwich) error
}

type Config struct {
	ChainID int64
	// blocks walked back from head when scanning an address
	Lookback  uint64
	CacheSize int
	Store     Store
}

type blockKey struct {
	number uint64
	dex    string
}

type Detector struct {
	src       Source
	cfg       Config
	poolABI   abi.ABI
	swaps     *lru.Cache[blockKey, []Swap]
	factories *lru.Cache[common.Address, common.Address]
}

func NewDetector(src Source, cfg Config) (*Detector, error) {
	if src == nil {
		return nil, errors.New("source is required")
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	poolABI, err := abi.JSON(strings.NewReader(eth.PoolABI))
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	swaps, err := lru.New[blockKey, []Swap](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("swap cache: %w", err)
	}
	factories, err := lru.New[common.Address, common.Address](cfg.CacheSize * 16)
	if err != nil {
		return nil, fmt.Errorf("factory cache: %w", err)
	}

	return &Detector{
		src:       src,
		cfg:       cfg,
		poolABI:   poolABI,
		swaps:     swaps,
		factories: factories,
	}, nil
}

// FindSandwichesInBlock returns every sandwich on the dex's pools in a block
func (d *Detector) FindSandwichesInBlock(ctx context.Context, block uint64, dexName string) ([]Sandwich, error) {
	dex, err := eth.LookupDEX(d.cfg.ChainID, dexName)
	if err != nil {
		return nil, err
	}

	if d.cfg.Store != nil {
		found, ok, err := d.cfg.Store.Load(d.cfg.ChainID, block, dex.Name)
		if err != nil {
			log.Warn("Sandwich cache read failed", "block", block, "err", err)
		} else if ok {
			log.Debug("Sandwich cache hit", "block", block, "dex", dex.Name, "count", len(found))
			return found, nil
		}
	}

	txs, err := d.src.BlockTransactions(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("fetch block %d: %w", block, err)
	}
	swaps, err := d.blockSwaps(ctx, block, dex, txs)
	if err != nil {
		return nil, err
	}

	found := Detect(block, dex.Name, swaps)
	log.Debug("Scanned block", "block", block, "dex", dex.Name, "txs", len(txs), "swaps", len(swaps), "sandwiches", len(found))

	if d.cfg.Store != nil {
		if err := d.cfg.Store.Save(d.cfg.ChainID, block, dex.Name, found); err != nil {
			log.Warn("Sandwich cache write failed", "block", block, "err", err)
		}
	}
	return found, nil
}

// FindSandwichesForAddress returns the sandwiches in which a transaction sent
// by address was the victim, over the last Lookback blocks. Only swaps within
// offset transaction positions of the address's transaction are inspected.
func (d *Detector) FindSandwichesForAddress(ctx context.Context, address common.Address, offset int, dexName string) ([]Sandwich, error) {
	if offset < 1 {
		return nil, ErrInvalidOffset
	}
	dex, err := eth.LookupDEX(d.cfg.ChainID, dexName)
	if err != nil {
		return nil, err
	}

	head, err := d.src.LatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch head: %w", err)
	}
	from := uint64(0)
	if head+1 > d.cfg.Lookback {
		from = head + 1 - d.cfg.Lookback
	}

	var out []Sandwich
	for block := from; block <= head; block++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txs, err := d.src.BlockTransactions(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("fetch block %d: %w", block, err)
		}

		var sent []eth.Tx
		for _, tx := range txs {
			if tx.From == address {
				sent = append(sent, tx)
			}
		}
		if len(sent) == 0 {
			continue
		}

		swaps, err := d.blockSwaps(ctx, block, dex, txs)
		if err != nil {
			return nil, err
		}
		for _, tx := range sent {
			for _, s := range Detect(block, dex.Name, window(swaps, tx.Index, offset)) {
				if s.Victim.Hash == tx.Hash {
					out = append(out, s)
				}
			}
		}
	}

	log.Debug("Scanned address", "address", address, "from", from, "to", head, "sandwiches", len(out))
	return out, nil
}

// blockSwaps returns the dex's swaps in a block, cached per block and dex
func (d *Detector) blockSwaps(ctx context.Context, block uint64, dex eth.DEXConfig, txs []eth.Tx) ([]Swap, error) {
	key := blockKey{number: block, dex: dex.Name}
	if swaps, ok := d.swaps.Get(key); ok {
		return swaps, nil
	}

	receipts, err := d.src.BlockReceipts(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("fetch receipts %d: %w", block, err)
	}

	all := collectSwaps(txs, receipts, dex)
	swaps := make([]Swap, 0, len(all))
	for _, s := range all {
		ok, err := d.fromFactory(ctx, s.Pool, dex.Factory)
		if err != nil {
			return nil, err
		}
		if ok {
			swaps = append(swaps, s)
		}
	}

	d.swaps.Add(key, swaps)
	return swaps, nil
}

// fromFactory checks a pool was deployed by the dex's factory. Pools that
// revert on factory() belong to nobody we track.
func (d *Detector) fromFactory(ctx context.Context, pool, factory common.Address) (bool, error) {
	if factory == (common.Address{}) {
		return true, nil
	}
	if got, ok := d.factories.Get(pool); ok {
		return got == factory, nil
	}

	data, err := d.poolABI.Pack("factory")
	if err != nil {
		return false, fmt.Errorf("pack factory: %w", err)
	}
	result, err := d.src.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: data}, nil)
	if err != nil {
		if ctx.Err() != nil || !eth.IsRevert(err) {
			return false, fmt.Errorf("call factory on %s: %w", pool.Hex(), err)
		}
		log.Trace("Pool rejected factory()", "pool", pool, "err", err)
		d.factories.Add(pool, common.Address{})
		return false, nil
	}

	var got common.Address
	unpacked, err := d.poolABI.Unpack("factory", result)
	if err == nil && len(unpacked) == 1 {
		got, _ = unpacked[0].(common.Address)
	}
	d.factories.Add(pool, got)
	return got == factory, nil
}
