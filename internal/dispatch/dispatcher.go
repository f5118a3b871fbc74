package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

// Detector finds sandwiches; *sandwich.Detector satisfies it
type Detector interface {
	FindSandwichesInBlock(ctx context.Context, block uint64, dex string) ([]sandwich.Sandwich, error)
	FindSandwichesForAddress(ctx context.Context, address common.Address, offset int, dex string) ([]sandwich.Sandwich, error)
}

// TxLocator resolves a transaction to its block. Unknown hashes must fail
// with eth.ErrTxNotFound.
type TxLocator interface {
	TransactionBlock(ctx context.Context, hash common.Hash) (uint64, error)
}

// Report is the outcome of a block or address query
type Report struct {
	Sandwiches []sandwich.Sandwich
	Err        error
}

// Verdict is the outcome of a transaction query
type Verdict struct {
	Hash       common.Hash
	Block      uint64
	Sandwiched bool
	Sandwich   *sandwich.Sandwich
	Err        error
}

type Dispatcher struct {
	detector Detector
	locator  TxLocator
	// dex used for transaction-hash queries
	dex string
}

func New(detector Detector, locator TxLocator, dex string) (*Dispatcher, error) {
	if detector == nil || locator == nil {
		return nil, errors.New("detector and locator are required")
	}
	if dex == "" {
		return nil, errors.New("dex is required")
	}
	return &Dispatcher{detector: detector, locator: locator, dex: dex}, nil
}

// Block passes a block query straight to the detector
func (d *Dispatcher) Block(ctx context.Context, block uint64, dex string) ([]sandwich.Sandwich, error) {
	return d.detector.FindSandwichesInBlock(ctx, block, dex)
}

// Address passes an address query straight to the detector
func (d *Dispatcher) Address(ctx context.Context, address common.Address, offset int, dex string) ([]sandwich.Sandwich, error) {
	return d.detector.FindSandwichesForAddress(ctx, address, offset, dex)
}

// Transaction scans the block containing hash and reports whether hash is a
// leg of any sandwich in it. The block is not scanned when the hash does not
// resolve.
func (d *Dispatcher) Transaction(ctx context.Context, hash common.Hash) (Verdict, error) {
	v := Verdict{Hash: hash}

	block, err := d.locator.TransactionBlock(ctx, hash)
	if err != nil {
		return v, err
	}
	v.Block = block

	found, err := d.detector.FindSandwichesInBlock(ctx, block, d.dex)
	if err != nil {
		return v, fmt.Errorf("scan block %d: %w", block, err)
	}

	if s, ok := Match(found, hash); ok {
		v.Sandwiched = true
		v.Sandwich = &s
	}
	return v, nil
}

// Match returns the first sandwich that has hash as one of its legs
func Match(found []sandwich.Sandwich, hash common.Hash) (sandwich.Sandwich, bool) {
	for _, s := range found {
		if s.Contains(hash) {
			return s, true
		}
	}
	return sandwich.Sandwich{}, false
}

// ScanBlock is Block for top-level callers: failures are logged and reported
// as an empty result
func (d *Dispatcher) ScanBlock(ctx context.Context, block uint64, dex string) Report {
	found, err := d.Block(ctx, block, dex)
	if err != nil {
		log.Error("Block scan failed", "block", block, "dex", dex, "err", err)
		return Report{Err: err}
	}
	return Report{Sandwiches: found}
}

func (d *Dispatcher) ScanAddress(ctx context.Context, address common.Address, offset int, dex string) Report {
	found, err := d.Address(ctx, address, offset, dex)
	if err != nil {
		log.Error("Address scan failed", "address", address, "dex", dex, "err", err)
		return Report{Err: err}
	}
	return Report{Sandwiches: found}
}

// CheckTransaction is Transaction for top-level callers: failures are logged
// and the verdict is negative
func (d *Dispatcher) CheckTransaction(ctx context.Context, hash common.Hash) Verdict {
	v, err := d.Transaction(ctx, hash)
	if err != nil {
		log.Error("Transaction check failed", "tx", hash, "err", err)
		return Verdict{Hash: hash, Block: v.Block, Err: err}
	}
	return v
}
