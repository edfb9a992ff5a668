package core

import (
	"context"
	"math/big"

	"github.com/defiweb/go-eth/types"
)

// RPCClient is the subset of the JSON-RPC node client the contract runtime
// depends on. It is satisfied by *rpc.Client from github.com/defiweb/go-eth.
type RPCClient interface {
	BlockNumber(ctx context.Context) (*big.Int, error)

	Call(ctx context.Context, call *types.Call, block types.BlockNumber) ([]byte, *types.Call, error)

	SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, *types.Transaction, error)

	GetLogs(ctx context.Context, query *types.FilterLogsQuery) ([]types.Log, error)

	NewFilter(ctx context.Context, query *types.FilterLogsQuery) (*big.Int, error)

	GetFilterChanges(ctx context.Context, id *big.Int) ([]types.Log, error)

	UninstallFilter(ctx context.Context, id *big.Int) (bool, error)

	GetTransactionReceipt(ctx context.Context, hash types.Hash) (*types.TransactionReceipt, error)
}
