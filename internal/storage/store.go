package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

const schema = `
CREATE TABLE IF NOT EXISTS scanned_blocks (
	chain_id     INTEGER NOT NULL,
	block_number INTEGER NOT NULL,
	dex          TEXT    NOT NULL,
	PRIMARY KEY (chain_id, block_number, dex)
);

CREATE TABLE IF NOT EXISTS sandwiches (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	chain_id     INTEGER NOT NULL,
	block_number INTEGER NOT NULL,
	dex          TEXT    NOT NULL,
	pool         TEXT    NOT NULL,
	front_hash   TEXT    NOT NULL,
	front_from   TEXT    NOT NULL,
	front_index  INTEGER NOT NULL,
	victim_hash  TEXT    NOT NULL,
	victim_from  TEXT    NOT NULL,
	victim_index INTEGER NOT NULL,
	back_hash    TEXT    NOT NULL,
	back_from    TEXT    NOT NULL,
	back_index   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sandwiches_block ON sandwiches (chain_id, block_number, dex);
`

// SandwichDB caches block scan results so repeated queries skip the RPC
type SandwichDB struct {
	db *sql.DB
}

func Open(dbPath string) (*SandwichDB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}

	return &SandwichDB{db: db}, nil
}

func (s *SandwichDB) Close() error {
	return s.db.Close()
}

// Load returns the cached result of a block scan. ok is false when the block
// was never scanned for this dex; a scanned block with no sandwiches is ok.
func (s *SandwichDB) Load(chainID int64, block uint64, dex string) ([]sandwich.Sandwich, bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM scanned_blocks WHERE chain_id = ? AND block_number = ? AND dex = ?",
		chainID, block, dex,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.Query(`
		SELECT pool, front_hash, front_from, front_index,
		       victim_hash, victim_from, victim_index,
		       back_hash, back_from, back_index
		FROM sandwiches
		WHERE chain_id = ? AND block_number = ? AND dex = ?
		ORDER BY id ASC
	`, chainID, block, dex)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	found := make([]sandwich.Sandwich, 0)
	for rows.Next() {
		var (
			pool                      string
			frontHash, frontFrom      string
			victimHash, victimFrom    string
			backHash, backFrom        string
			frontIdx, victimIdx, back uint
		)
		if err := rows.Scan(&pool, &frontHash, &frontFrom, &frontIdx,
			&victimHash, &victimFrom, &victimIdx,
			&backHash, &backFrom, &back); err != nil {
			return nil, false, err
		}
		found = append(found, sandwich.Sandwich{
			Block:    block,
			DEX:      dex,
			Pool:     common.HexToAddress(pool),
			FrontRun: sandwich.TxRef{Hash: common.HexToHash(frontHash), From: common.HexToAddress(frontFrom), Index: frontIdx},
			Victim:   sandwich.TxRef{Hash: common.HexToHash(victimHash), From: common.HexToAddress(victimFrom), Index: victimIdx},
			BackRun:  sandwich.TxRef{Hash: common.HexToHash(backHash), From: common.HexToAddress(backFrom), Index: back},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return found, true, nil
}

// Save replaces the cached result for a block
func (s *SandwichDB) Save(chainID int64, block uint64, dex string, found []sandwich.Sandwich) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM sandwiches WHERE chain_id = ? AND block_number = ? AND dex = ?",
		chainID, block, dex,
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sandwiches
		(chain_id, block_number, dex, pool,
		 front_hash, front_from, front_index,
		 victim_hash, victim_from, victim_index,
		 back_hash, back_from, back_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sw := range found {
		_, err := stmt.Exec(
			chainID, block, dex, sw.Pool.Hex(),
			sw.FrontRun.Hash.Hex(), sw.FrontRun.From.Hex(), sw.FrontRun.Index,
			sw.Victim.Hash.Hex(), sw.Victim.From.Hex(), sw.Victim.Index,
			sw.BackRun.Hash.Hex(), sw.BackRun.From.Hex(), sw.BackRun.Index,
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO scanned_blocks (chain_id, block_number, dex) VALUES (?, ?, ?)",
		chainID, block, dex,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// stats for monitoring cache size
func (s *SandwichDB) GetStats() (map[string]int64, error) {
	stats := make(map[string]int64)

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM scanned_blocks").Scan(&count); err != nil {
		return nil, err
	}
	stats["scanned_blocks"] = count

	if err := s.db.QueryRow("SELECT COUNT(*) FROM sandwiches").Scan(&count); err != nil {
		return nil, err
	}
	stats["sandwiches"] = count

	return stats, nil
}
