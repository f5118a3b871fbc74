package sandwich

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
)

// swapDirection decodes which token went into the pool
func swapDirection(kind eth.SwapKind, data []byte) Direction {
	switch kind {
	case eth.SwapV2:
		if len(data) < 128 {
			return Unknown
		}
		amount0In := new(uint256.Int).SetBytes(data[0:32])
		amount1In := new(uint256.Int).SetBytes(data[32:64])
		amount0Out := new(uint256.Int).SetBytes(data[64:96])
		amount1Out := new(uint256.Int).SetBytes(data[96:128])

		if !amount0In.IsZero() && !amount1Out.IsZero() && amount1In.IsZero() && amount0Out.IsZero() {
			return Token0In
		}
		if !amount1In.IsZero() && !amount0Out.IsZero() && amount0In.IsZero() && amount1Out.IsZero() {
			return Token1In
		}
		return Unknown

	case eth.SwapV3:
		if len(data) < 64 {
			return Unknown
		}
		// int256 deltas, positive means the pool received the token
		amount0 := new(uint256.Int).SetBytes(data[0:32])
		amount1 := new(uint256.Int).SetBytes(data[32:64])
		switch {
		case amount0.Sign() > 0 && amount1.Sign() < 0:
			return Token0In
		case amount1.Sign() > 0 && amount0.Sign() < 0:
			return Token1In
		}
		return Unknown
	}
	return Unknown
}

// collectSwaps pulls the dex's Swap logs out of a block's receipts, ordered by
// transaction then log position
func collectSwaps(txs []eth.Tx, receipts []*types.Receipt, dex eth.DEXConfig) []Swap {
	senders := make(map[common.Hash]eth.Tx, len(txs))
	for _, tx := range txs {
		senders[tx.Hash] = tx
	}

	var swaps []Swap
	for _, receipt := range receipts {
		if receipt.Status != types.ReceiptStatusSuccessful {
			continue
		}
		tx, ok := senders[receipt.TxHash]
		if !ok {
			continue
		}
		for _, lg := range receipt.Logs {
			if len(lg.Topics) == 0 || lg.Topics[0] != dex.Topic {
				continue
			}
			dir := swapDirection(dex.Kind, lg.Data)
			if dir == Unknown {
				continue
			}
			swaps = append(swaps, Swap{
				TxHash:    tx.Hash,
				TxIndex:   tx.Index,
				LogIndex:  lg.Index,
				From:      tx.From,
				Pool:      lg.Address,
				Direction: dir,
			})
		}
	}

	sort.SliceStable(swaps, func(i, j int) bool {
		if swaps[i].TxIndex == swaps[j].TxIndex {
			return swaps[i].LogIndex < swaps[j].LogIndex
		}
		return swaps[i].TxIndex < swaps[j].TxIndex
	})
	return swaps
}

// window keeps the swaps within offset positions of the transaction at index
func window(swaps []Swap, index uint, offset int) []Swap {
	lo := uint(0)
	if index > uint(offset) {
		lo = index - uint(offset)
	}
	hi := index + uint(offset)

	out := make([]Swap, 0, len(swaps))
	for _, s := range swaps {
		if s.TxIndex >= lo && s.TxIndex <= hi {
			out = append(out, s)
		}
	}
	return out
}
