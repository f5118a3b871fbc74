package eth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrUnknownDEX = errors.New("unknown dex")

// SwapKind selects how a pool's Swap event data is laid out
type SwapKind int

const (
	// amount0In, amount1In, amount0Out, amount1Out
	SwapV2 SwapKind = iota + 1
	// signed amount0, amount1 deltas from the pool's perspective
	SwapV3
)

var (
	SwapV2Topic = crypto.Keccak256Hash([]byte("Swap(address,uint256,uint256,uint256,uint256,address)"))
	SwapV3Topic = crypto.Keccak256Hash([]byte("Swap(address,address,int256,int256,uint160,uint128,int24)"))
	// PancakeSwap V3 appends protocol fees to the V3 event
	PancakeV3SwapTopic = crypto.Keccak256Hash([]byte("Swap(address,address,int256,int256,uint160,uint128,int24,uint128,uint128)"))
)

// DEXConfig identifies a DEX deployment on one chain. Pools are attributed to
// it by their Swap topic and, when Factory is set, by their factory() address.
type DEXConfig struct {
	Name    string
	Kind    SwapKind
	Topic   common.Hash
	Factory common.Address
}

// KnownDEXes - tracked deployments keyed by chain id
var KnownDEXes = map[int64][]DEXConfig{
	1: {
		{
			Name:    "UniswapV2",
			Kind:    SwapV2,
			Topic:   SwapV2Topic,
			Factory: common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		},
		{
			Name:    "SushiSwap",
			Kind:    SwapV2,
			Topic:   SwapV2Topic,
			Factory: common.HexToAddress("0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac"),
		},
		{
			Name:    "ShibaSwap",
			Kind:    SwapV2,
			Topic:   SwapV2Topic,
			Factory: common.HexToAddress("0x115934131916C8b277DD010Ee02de363c09d037c"),
		},
		{
			Name:    "UniswapV3",
			Kind:    SwapV3,
			Topic:   SwapV3Topic,
			Factory: common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"),
		},
	},
	56: {
		{
			Name:    "PancakeSwapV2",
			Kind:    SwapV2,
			Topic:   SwapV2Topic,
			Factory: common.HexToAddress("0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73"),
		},
		{
			Name:    "PancakeSwapV3",
			Kind:    SwapV3,
			Topic:   PancakeV3SwapTopic,
			Factory: common.HexToAddress("0x0BFbCF9fa4f9C56B0F40a671Ad40E0805A091865"),
		},
		{
			Name:    "UniswapV2",
			Kind:    SwapV2,
			Topic:   SwapV2Topic,
			Factory: common.HexToAddress("0x8909Dc15e40173Ff4699343b6eB8132c65e18eC6"),
		},
		{
			Name:    "UniswapV3",
			Kind:    SwapV3,
			Topic:   SwapV3Topic,
			Factory: common.HexToAddress("0xdB1d10011AD0Ff90774D0C6Bb92e5C5c8b4461F7"),
		},
	},
	8453: {
		{
			Name:    "UniswapV2",
			Kind:    SwapV2,
			Topic:   SwapV2Topic,
			Factory: common.HexToAddress("0x8909Dc15e40173Ff4699343b6eB8132c65e18eC6"),
		},
		{
			Name:    "UniswapV3",
			Kind:    SwapV3,
			Topic:   SwapV3Topic,
			Factory: common.HexToAddress("0x33128a8fC17869897dcE68Ed026d694621f6FDfD"),
		},
	},
}

// LookupDEX finds a deployment by case-insensitive name
func LookupDEX(chainID int64, name string) (DEXConfig, error) {
	for _, dex := range KnownDEXes[chainID] {
		if strings.EqualFold(dex.Name, strings.TrimSpace(name)) {
			return dex, nil
		}
	}
	return DEXConfig{}, fmt.Errorf("%w %q on chain %d (known: %s)",
		ErrUnknownDEX, name, chainID, strings.Join(DEXNames(chainID), ", "))
}

func DEXNames(chainID int64) []string {
	names := make([]string, 0, len(KnownDEXes[chainID]))
	for _, dex := range KnownDEXes[chainID] {
		names = append(names, dex.Name)
	}
	sort.Strings(names)
	return names
}

// UniswapV2-style pool ABI, factory() only
const PoolABI = `[
	{
		"inputs": [],
		"name": "factory",
		"outputs": [
			{"internalType": "address", "name": "", "type": "address"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`
