package core

import (
	"context"
	"fmt"
	"time"

	"github.com/defiweb/go-eth/types"
	logger "github.com/sirupsen/logrus"
)

// receiptPollInterval is roughly one block.
const receiptPollInterval = 12 * time.Second

// WaitForTxConfirmation polls the node until the transaction is confirmed
// or the timeout elapses.
func WaitForTxConfirmation(
	ctx context.Context,
	client RPCClient,
	txHash *types.Hash,
	timeout time.Duration,
) (*types.TransactionReceipt, error) {
	if client == nil {
		return nil, fmt.Errorf("rpc client not set")
	}
	if txHash == nil {
		return nil, fmt.Errorf("tx hash is nil")
	}

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to wait for confirmation of transaction %v", txHash)
		case <-ticker.C:
			logger.WithField("txHash", txHash).Tracef("checking transaction confirmation")

			receipt, err := client.GetTransactionReceipt(ctx, *txHash)
			if err != nil {
				logger.WithField("txHash", txHash).Errorf("failed to get transaction receipt: %v", err)
				continue
			}
			if receipt == nil {
				continue
			}

			if receipt.Status == nil || receipt.TransactionHash.IsZero() {
				logger.WithField("txHash", txHash).Tracef("transaction is not yet confirmed")
				continue
			}
			return receipt, nil
		}
	}
}
