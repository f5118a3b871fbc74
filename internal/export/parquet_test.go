package export

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

func TestWriteAndReadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandwiches.parquet")

	found := []sandwich.Sandwich{
		{
			Block:    12345678,
			DEX:      "UniswapV2",
			Pool:     common.HexToAddress("0xb001"),
			FrontRun: sandwich.TxRef{Hash: common.HexToHash("0x01"), From: common.HexToAddress("0xa1"), Index: 3},
			Victim:   sandwich.TxRef{Hash: common.HexToHash("0x02"), From: common.HexToAddress("0xb2"), Index: 4},
			BackRun:  sandwich.TxRef{Hash: common.HexToHash("0x03"), From: common.HexToAddress("0xa1"), Index: 5},
		},
		{
			Block:    12345679,
			DEX:      "UniswapV2",
			Pool:     common.HexToAddress("0xb002"),
			FrontRun: sandwich.TxRef{Hash: common.HexToHash("0x11"), From: common.HexToAddress("0xa1"), Index: 0},
			Victim:   sandwich.TxRef{Hash: common.HexToHash("0x12"), From: common.HexToAddress("0xc3"), Index: 1},
			BackRun:  sandwich.TxRef{Hash: common.HexToHash("0x13"), From: common.HexToAddress("0xa1"), Index: 2},
		},
	}

	if err := WriteParquet(path, 8453, found); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	rows, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0] != toRow(8453, found[0]) {
		t.Errorf("row 0 mismatch:\n got  %+v\n want %+v", rows[0], toRow(8453, found[0]))
	}
	if rows[1].VictimTx != found[1].Victim.Hash.Hex() || rows[1].BlockNumber != 12345679 {
		t.Errorf("row 1 mismatch: %+v", rows[1])
	}
}

func TestToRow(t *testing.T) {
	s := sandwich.Sandwich{
		Block:    7,
		DEX:      "PancakeSwapV2",
		FrontRun: sandwich.TxRef{From: common.HexToAddress("0xa1")},
		Victim:   sandwich.TxRef{From: common.HexToAddress("0xb2"), Index: 9},
	}
	row := toRow(56, s)
	if row.Attacker != common.HexToAddress("0xa1").Hex() || row.Victim != common.HexToAddress("0xb2").Hex() {
		t.Errorf("unexpected parties %+v", row)
	}
	if row.ChainID != 56 || row.VictimIndex != 9 {
		t.Errorf("unexpected row %+v", row)
	}
}
