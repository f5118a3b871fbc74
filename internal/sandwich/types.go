package sandwich

import (
	"github.com/ethereum/go-ethereum/common"
)

// TxRef points at one leg of a sandwich
type TxRef struct {
	Hash  common.Hash    `json:"hash"`
	From  common.Address `json:"from"`
	Index uint           `json:"index"`
}

// Sandwich is a front-run / victim / back-run triplet on a single pool
type Sandwich struct {
	Block    uint64         `json:"block"`
	DEX      string         `json:"dex"`
	Pool     common.Address `json:"pool"`
	FrontRun TxRef          `json:"frontRun"`
	Victim   TxRef          `json:"sandwich"`
	BackRun  TxRef          `json:"backRun"`
}

func (s Sandwich) Legs() [3]TxRef {
	return [3]TxRef{s.FrontRun, s.Victim, s.BackRun}
}

// Contains reports whether hash is any of the three legs
func (s Sandwich) Contains(hash common.Hash) bool {
	return s.FrontRun.Hash == hash || s.Victim.Hash == hash || s.BackRun.Hash == hash
}

func (s Sandwich) Attacker() common.Address {
	return s.FrontRun.From
}

// Direction of a swap relative to the pool's token ordering
type Direction int8

const (
	Unknown  Direction = 0
	Token0In Direction = 1
	Token1In Direction = -1
)

// Swap is a decoded Swap log attributed to the transaction that emitted it
type Swap struct {
	TxHash    common.Hash
	TxIndex   uint
	LogIndex  uint
	From      common.Address
	Pool      common.Address
	Direction Direction
}

func (s Swap) ref() TxRef {
	return TxRef{Hash: s.TxHash, From: s.From, Index: s.TxIndex}
}
