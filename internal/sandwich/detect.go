package sandwich

import (
	"github.com/ethereum/go-ethereum/common"
)

// Detect finds sandwiches in an ordered list of swaps from one block.
//
// Per pool, a swap by A is a front-run when A's next swap on that pool comes
// from a later transaction and goes the other way. Every swap in between made
// by someone else in the front-run's direction is a victim; each victim
// yields its own record.
func Detect(block uint64, dex string, swaps []Swap) []Sandwich {
	var pools []common.Address
	byPool := make(map[common.Address][]Swap)
	for _, s := range swaps {
		if s.Direction == Unknown {
			continue
		}
		if _, ok := byPool[s.Pool]; !ok {
			pools = append(pools, s.Pool)
		}
		byPool[s.Pool] = append(byPool[s.Pool], s)
	}

	var out []Sandwich
	for _, pool := range pools {
		seq := byPool[pool]
		closed := make(map[int]bool)

		for i, front := range seq {
			if closed[i] {
				continue
			}
			back := -1
			for j := i + 1; j < len(seq); j++ {
				if seq[j].From != front.From {
					continue
				}
				if seq[j].Direction == -front.Direction && seq[j].TxIndex > front.TxIndex {
					back = j
				}
				break
			}
			if back < 0 {
				continue
			}

			seen := make(map[common.Hash]bool)
			for _, victim := range seq[i+1 : back] {
				if victim.From == front.From || victim.Direction != front.Direction {
					continue
				}
				if victim.TxIndex <= front.TxIndex || victim.TxIndex >= seq[back].TxIndex {
					continue
				}
				if seen[victim.TxHash] {
					continue
				}
				seen[victim.TxHash] = true

				out = append(out, Sandwich{
					Block:    block,
					DEX:      dex,
					Pool:     pool,
					FrontRun: front.ref(),
					Victim:   victim.ref(),
					BackRun:  seq[back].ref(),
				})
			}
			if len(seen) > 0 {
				closed[back] = true
			}
		}
	}
	return out
}
