package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrTxNotFound    = errors.New("transaction not found")
	ErrTxPending     = errors.New("transaction not yet mined")
	ErrBlockNotFound = errors.New("block not found")
)

// Tx is the slice of a block transaction the detector needs. Decoded from the
// raw JSON so that chain-specific types (L2 deposits) don't break decoding.
type Tx struct {
	Hash  common.Hash
	From  common.Address
	To    *common.Address
	Index uint
}

type endpoint struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

// Client talks to a primary endpoint and falls over to backups in order
type Client struct {
	endpoints []*endpoint
}

// NewClient dials the primary endpoint and any backups. A backup that cannot
// be dialed is skipped, the primary is required.
func NewClient(ctx context.Context, primary string, backups ...string) (*Client, error) {
	if primary == "" {
		return nil, errors.New("rpc url is required")
	}

	rc, err := rpc.DialContext(ctx, primary)
	if err != nil {
		return nil, fmt.Errorf("dial primary rpc: %w", err)
	}
	c := &Client{endpoints: []*endpoint{{rpc: rc, eth: ethclient.NewClient(rc)}}}

	for i, url := range backups {
		rc, err := rpc.DialContext(ctx, url)
		if err != nil {
			log.Warn("Skipping backup RPC", "index", i, "err", err)
			continue
		}
		c.endpoints = append(c.endpoints, &endpoint{rpc: rc, eth: ethclient.NewClient(rc)})
	}

	return c, nil
}

// Dial connects to a preset and checks the node serves the expected chain
func Dial(ctx context.Context, chain Chain) (*Client, error) {
	if err := chain.RequireEVM(); err != nil {
		return nil, err
	}
	c, err := NewClient(ctx, chain.RPC, chain.Backups...)
	if err != nil {
		return nil, err
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	if id.Int64() != chain.ChainID {
		c.Close()
		return nil, fmt.Errorf("rpc serves chain %s, expected %d (%s)", id, chain.ChainID, chain.Name)
	}
	return c, nil
}

func (c *Client) Close() {
	for _, ep := range c.endpoints {
		ep.eth.Close()
	}
}

// do runs fn against each endpoint until one succeeds. Lookups that found
// nothing and cancelled contexts are final.
func (c *Client) do(ctx context.Context, op string, fn func(ep *endpoint) error) error {
	var errs []error
	for i, ep := range c.endpoints {
		err := fn(ep)
		if err == nil {
			return nil
		}
		if errors.Is(err, ethereum.NotFound) || ctx.Err() != nil {
			return err
		}
		log.Warn("RPC call failed", "op", op, "endpoint", i, "err", err)
		errs = append(errs, err)
	}
	if len(errs) == 1 {
		return fmt.Errorf("%s: %w", op, errs[0])
	}
	return fmt.Errorf("%s: all %d endpoints failed: %w", op, len(errs), errors.Join(errs...))
}

type rpcTx struct {
	Hash             common.Hash     `json:"hash"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	BlockNumber      *hexutil.Big    `json:"blockNumber"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
}

type rpcBlock struct {
	Number       *hexutil.Big `json:"number"`
	Transactions []rpcTx      `json:"transactions"`
}

// TransactionBlock resolves a tx hash to the number of its containing block
func (c *Client) TransactionBlock(ctx context.Context, hash common.Hash) (uint64, error) {
	var tx *rpcTx
	err := c.do(ctx, "eth_getTransactionByHash", func(ep *endpoint) error {
		tx = nil
		return ep.rpc.CallContext(ctx, &tx, "eth_getTransactionByHash", hash)
	})
	if err != nil {
		return 0, err
	}
	if tx == nil {
		return 0, fmt.Errorf("%w: %s", ErrTxNotFound, hash.Hex())
	}
	if tx.BlockNumber == nil {
		return 0, fmt.Errorf("%w: %s", ErrTxPending, hash.Hex())
	}
	return tx.BlockNumber.ToInt().Uint64(), nil
}

// BlockTransactions returns every transaction of a block in execution order
func (c *Client) BlockTransactions(ctx context.Context, number uint64) ([]Tx, error) {
	var block *rpcBlock
	err := c.do(ctx, "eth_getBlockByNumber", func(ep *endpoint) error {
		block = nil
		return ep.rpc.CallContext(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(number), true)
	})
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("%w: %d", ErrBlockNotFound, number)
	}

	txs := make([]Tx, 0, len(block.Transactions))
	for i, raw := range block.Transactions {
		index := uint(i)
		if raw.TransactionIndex != nil {
			index = uint(*raw.TransactionIndex)
		}
		txs = append(txs, Tx{
			Hash:  raw.Hash,
			From:  raw.From,
			To:    raw.To,
			Index: index,
		})
	}
	return txs, nil
}

func (c *Client) BlockReceipts(ctx context.Context, number uint64) ([]*types.Receipt, error) {
	var receipts []*types.Receipt
	err := c.do(ctx, "eth_getBlockReceipts", func(ep *endpoint) error {
		var err error
		receipts, err = ep.eth.BlockReceipts(ctx, rpc.BlockNumberOrHashWithNumber(rpc.BlockNumber(number)))
		return err
	})
	return receipts, err
}

func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.do(ctx, "eth_blockNumber", func(ep *endpoint) error {
		var err error
		number, err = ep.eth.BlockNumber(ctx)
		return err
	})
	return number, err
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.do(ctx, "eth_chainId", func(ep *endpoint) error {
		var err error
		id, err = ep.eth.ChainID(ctx)
		return err
	})
	return id, err
}

// CallContract executes a read-only call. Reverts are final; any other node
// error (rate limits, capacity) fails over like a transport error.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var (
		out      []byte
		reverted error
	)
	err := c.do(ctx, "eth_call", func(ep *endpoint) error {
		var err error
		out, err = ep.eth.CallContract(ctx, msg, blockNumber)
		if IsRevert(err) {
			reverted = err
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if reverted != nil {
		return nil, reverted
	}
	return out, nil
}

// revert code used by geth and most clients for eth_call
const revertErrorCode = 3

// IsRevert reports whether err is the node saying the call reverted, as
// opposed to the node failing to execute it
func IsRevert(err error) bool {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return false
	}
	if rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	return strings.HasPrefix(strings.ToLower(rpcErr.Error()), "execution reverted")
}
