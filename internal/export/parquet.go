package export

import (
	"fmt"

	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// Row is the flat parquet layout of one sandwich
type Row struct {
	ChainID     int64  `parquet:"name=chain_id, type=INT64"`
	BlockNumber int64  `parquet:"name=block_number, type=INT64"`
	DEX         string `parquet:"name=dex, type=BYTE_ARRAY, convertedtype=UTF8"`
	Pool        string `parquet:"name=pool, type=BYTE_ARRAY, convertedtype=UTF8"`
	Attacker    string `parquet:"name=attacker, type=BYTE_ARRAY, convertedtype=UTF8"`
	Victim      string `parquet:"name=victim, type=BYTE_ARRAY, convertedtype=UTF8"`
	FrontRun    string `parquet:"name=front_run, type=BYTE_ARRAY, convertedtype=UTF8"`
	FrontIndex  int64  `parquet:"name=front_index, type=INT64"`
	VictimTx    string `parquet:"name=victim_tx, type=BYTE_ARRAY, convertedtype=UTF8"`
	VictimIndex int64  `parquet:"name=victim_index, type=INT64"`
	BackRun     string `parquet:"name=back_run, type=BYTE_ARRAY, convertedtype=UTF8"`
	BackIndex   int64  `parquet:"name=back_index, type=INT64"`
}

func toRow(chainID int64, s sandwich.Sandwich) Row {
	return Row{
		ChainID:     chainID,
		BlockNumber: int64(s.Block),
		DEX:         s.DEX,
		Pool:        s.Pool.Hex(),
		Attacker:    s.Attacker().Hex(),
		Victim:      s.Victim.From.Hex(),
		FrontRun:    s.FrontRun.Hash.Hex(),
		FrontIndex:  int64(s.FrontRun.Index),
		VictimTx:    s.Victim.Hash.Hex(),
		VictimIndex: int64(s.Victim.Index),
		BackRun:     s.BackRun.Hash.Hex(),
		BackIndex:   int64(s.BackRun.Index),
	}
}

// WriteParquet writes the sandwiches to a snappy-compressed parquet file
func WriteParquet(path string, chainID int64, found []sandwich.Sandwich) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range found {
		if err := pw.Write(toRow(chainID, s)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}

// ReadParquet loads every row of a file written by WriteParquet
func ReadParquet(path string) ([]Row, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(Row), 4)
	if err != nil {
		return nil, fmt.Errorf("create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]Row, int(pr.GetNumRows()))
	if len(rows) == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
