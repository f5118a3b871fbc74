package sandwich

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
)

var (
	attacker = common.HexToAddress("0xa77ac4e2")
	victimA  = common.HexToAddress("0x71c71a")
	victimB  = common.HexToAddress("0x71c71b")
	poolX    = common.HexToAddress("0xb001")
	poolY    = common.HexToAddress("0xb002")
)

func txHash(i uint) common.Hash {
	return common.BigToHash(uint256.NewInt(uint64(i) + 1).ToBig())
}

func swap(index uint, from common.Address, pool common.Address, dir Direction) Swap {
	return Swap{
		TxHash:    txHash(index),
		TxIndex:   index,
		From:      from,
		Pool:      pool,
		Direction: dir,
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		swaps   []Swap
		victims []common.Hash
	}{
		{
			name: "classic sandwich",
			swaps: []Swap{
				swap(0, attacker, poolX, Token0In),
				swap(1, victimA, poolX, Token0In),
				swap(2, attacker, poolX, Token1In),
			},
			victims: []common.Hash{txHash(1)},
		},
		{
			name: "two victims share one front and back run",
			swaps: []Swap{
				swap(3, attacker, poolX, Token1In),
				swap(4, victimA, poolX, Token1In),
				swap(5, victimB, poolX, Token1In),
				swap(6, attacker, poolX, Token0In),
			},
			victims: []common.Hash{txHash(4), txHash(5)},
		},
		{
			name: "victim trading the other way is not sandwiched",
			swaps: []Swap{
				swap(0, attacker, poolX, Token0In),
				swap(1, victimA, poolX, Token1In),
				swap(2, attacker, poolX, Token1In),
			},
		},
		{
			name: "back run in the same direction is not a sandwich",
			swaps: []Swap{
				swap(0, attacker, poolX, Token0In),
				swap(1, victimA, poolX, Token0In),
				swap(2, attacker, poolX, Token0In),
			},
		},
		{
			name: "legs on different pools",
			swaps: []Swap{
				swap(0, attacker, poolX, Token0In),
				swap(1, victimA, poolX, Token0In),
				swap(2, attacker, poolY, Token1In),
			},
		},
		{
			name: "round trip inside one transaction",
			swaps: []Swap{
				{TxHash: txHash(0), TxIndex: 0, LogIndex: 0, From: attacker, Pool: poolX, Direction: Token0In},
				{TxHash: txHash(0), TxIndex: 0, LogIndex: 1, From: attacker, Pool: poolX, Direction: Token1In},
			},
		},
		{
			name: "no victim between attacker swaps",
			swaps: []Swap{
				swap(0, attacker, poolX, Token0In),
				swap(1, attacker, poolX, Token1In),
			},
		},
		{
			name: "unknown direction ignored",
			swaps: []Swap{
				swap(0, attacker, poolX, Token0In),
				swap(1, victimA, poolX, Unknown),
				swap(2, attacker, poolX, Token1In),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(100, "UniswapV2", tt.swaps)
			if len(got) != len(tt.victims) {
				t.Fatalf("expected %d sandwiches, got %d: %+v", len(tt.victims), len(got), got)
			}
			for i, s := range got {
				if s.Victim.Hash != tt.victims[i] {
					t.Errorf("sandwich %d: victim %s, want %s", i, s.Victim.Hash.Hex(), tt.victims[i].Hex())
				}
				if s.Attacker() != attacker {
					t.Errorf("sandwich %d: attacker %s", i, s.Attacker().Hex())
				}
				if s.Block != 100 || s.DEX != "UniswapV2" {
					t.Errorf("sandwich %d: unexpected block/dex %d/%s", i, s.Block, s.DEX)
				}
			}
		})
	}
}

func TestDetectSeparatePools(t *testing.T) {
	swaps := []Swap{
		swap(0, attacker, poolX, Token0In),
		swap(1, attacker, poolY, Token1In),
		swap(2, victimA, poolX, Token0In),
		swap(3, victimB, poolY, Token1In),
		swap(4, attacker, poolX, Token1In),
		swap(5, attacker, poolY, Token0In),
	}

	got := Detect(1, "UniswapV3", swaps)
	if len(got) != 2 {
		t.Fatalf("expected 2 sandwiches, got %d", len(got))
	}
	if got[0].Pool != poolX || got[1].Pool != poolY {
		t.Errorf("expected pool order X, Y; got %s, %s", got[0].Pool.Hex(), got[1].Pool.Hex())
	}
	if got[1].FrontRun.Hash != txHash(1) || got[1].BackRun.Hash != txHash(5) {
		t.Errorf("unexpected legs on pool Y: %+v", got[1])
	}
}

func TestSandwichContains(t *testing.T) {
	s := Sandwich{
		FrontRun: TxRef{Hash: txHash(0)},
		Victim:   TxRef{Hash: txHash(1)},
		BackRun:  TxRef{Hash: txHash(2)},
	}
	for i := uint(0); i < 3; i++ {
		if !s.Contains(txHash(i)) {
			t.Errorf("expected leg %d to match", i)
		}
	}
	if s.Contains(txHash(3)) {
		t.Error("unexpected match for unrelated hash")
	}
}

func word(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func v2Data(a0In, a1In, a0Out, a1Out uint64) []byte {
	var data []byte
	for _, v := range []uint64{a0In, a1In, a0Out, a1Out} {
		data = append(data, word(uint256.NewInt(v))...)
	}
	return data
}

// v3Data encodes signed amount0/amount1 plus the trailing price fields
func v3Data(amount0, amount1 int64) []byte {
	signed := func(v int64) *uint256.Int {
		if v < 0 {
			return new(uint256.Int).Neg(uint256.NewInt(uint64(-v)))
		}
		return uint256.NewInt(uint64(v))
	}
	data := append(word(signed(amount0)), word(signed(amount1))...)
	for i := 0; i < 3; i++ {
		data = append(data, word(uint256.NewInt(0))...)
	}
	return data
}

func TestSwapDirection(t *testing.T) {
	tests := []struct {
		name string
		kind eth.SwapKind
		data []byte
		want Direction
	}{
		{"v2 token0 in", eth.SwapV2, v2Data(100, 0, 0, 50), Token0In},
		{"v2 token1 in", eth.SwapV2, v2Data(0, 100, 50, 0), Token1In},
		{"v2 ambiguous", eth.SwapV2, v2Data(100, 100, 50, 50), Unknown},
		{"v2 short data", eth.SwapV2, v2Data(100, 0, 0, 50)[:64], Unknown},
		{"v3 token0 in", eth.SwapV3, v3Data(1000, -990), Token0In},
		{"v3 token1 in", eth.SwapV3, v3Data(-990, 1000), Token1In},
		{"v3 zero", eth.SwapV3, v3Data(0, 0), Unknown},
		{"unknown kind", eth.SwapKind(0), v2Data(100, 0, 0, 50), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := swapDirection(tt.kind, tt.data); got != tt.want {
				t.Errorf("swapDirection = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	var swaps []Swap
	for i := uint(0); i < 10; i++ {
		swaps = append(swaps, swap(i, victimA, poolX, Token0In))
	}

	got := window(swaps, 0, 1)
	if len(got) != 2 || got[0].TxIndex != 0 || got[1].TxIndex != 1 {
		t.Errorf("window at start: %+v", got)
	}

	got = window(swaps, 5, 2)
	if len(got) != 5 || got[0].TxIndex != 3 || got[4].TxIndex != 7 {
		t.Errorf("window in middle: %+v", got)
	}
}
