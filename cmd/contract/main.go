//  Copyright (C) 2021-2023 Chronicle Labs, Inc.
//
//  This program is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Affero General Public License as
//  published by the Free Software Foundation, either version 3 of the
//  License, or (at your option) any later version.
//
//  This program is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Affero General Public License for more details.
//
//  You should have received a copy of the GNU Affero General Public License
//  along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/defiweb/go-eth/rpc"
	"github.com/defiweb/go-eth/rpc/transport"
	"github.com/defiweb/go-eth/types"

	"github.com/chronicleprotocol/contract/core"
)

const txConfirmationTimeout = 5 * time.Minute

type options struct {
	RpcURL      string
	MetricsAddr string
	Address     string
	From        string
	Signature   string
	Block       string
	GasLimit    uint64
	GasPriceWei string
	ValueEth    string
	Returns     int
	Wait        bool

	// watch
	Event     string
	FromBlock uint64
	ToBlock   uint64
	Window    uint64

	// message
	Nonce    uint64
	Gas      uint64
	To       string
	ValueWei string
	Data     string
	ChainID  uint64
}

func newClient(url string) (*rpc.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("please provide an RPC URL using the `--rpc-url` flag")
	}
	t, err := transport.NewHTTP(transport.HTTPOptions{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return rpc.NewClient(rpc.WithTransport(t))
}

func hexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func parseBlock(s string) (types.BlockNumber, error) {
	switch s {
	case "", "latest":
		return types.LatestBlockNumber, nil
	case "pending":
		return types.PendingBlockNumber, nil
	case "earliest":
		return types.EarliestBlockNumber, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return types.LatestBlockNumber, fmt.Errorf("invalid block cursor %q", s)
	}
	return types.BlockNumberFromBigInt(n), nil
}

func (o *options) txOptions() (core.TxOptions, error) {
	opts := core.TxOptions{}
	if o.Address != "" {
		to, err := types.AddressFromHex(o.Address)
		if err != nil {
			return opts, fmt.Errorf("failed to parse address %s: %w", o.Address, err)
		}
		opts = opts.WithTo(to)
	}
	if o.From != "" {
		from, err := types.AddressFromHex(o.From)
		if err != nil {
			return opts, fmt.Errorf("failed to parse from address %s: %w", o.From, err)
		}
		opts = opts.WithFrom(from)
	}
	if o.GasLimit != 0 {
		opts = opts.WithGasLimit(o.GasLimit)
	}
	if o.GasPriceWei != "" {
		price, ok := new(big.Int).SetString(o.GasPriceWei, 10)
		if !ok {
			return opts, fmt.Errorf("invalid gas price %q", o.GasPriceWei)
		}
		opts = opts.WithGasPrice(price)
	}
	if o.ValueEth != "" {
		eth, ok := new(big.Float).SetString(o.ValueEth)
		if !ok {
			return opts, fmt.Errorf("invalid ether value %q", o.ValueEth)
		}
		opts = opts.WithEther(eth)
	}
	return opts, nil
}

func toAnySlice(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func callCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call [args...]",
		Short: "Perform a read-only contract call and decode the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts.RpcURL)
			if err != nil {
				return err
			}
			method, err := core.NewMethod(opts.Signature)
			if err != nil {
				return err
			}
			block, err := parseBlock(opts.Block)
			if err != nil {
				return err
			}
			txOpts, err := opts.txOptions()
			if err != nil {
				return err
			}

			returns := make([]any, opts.Returns)
			ptrs := make([]any, opts.Returns)
			for i := range returns {
				ptrs[i] = &returns[i]
			}

			err = core.NewDispatcher(client).Call(cmd.Context(), txOpts, block, method, toAnySlice(args), ptrs...)
			if err != nil {
				return err
			}
			for i, v := range returns {
				fmt.Printf("out[%d]: %v\n", i, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Signature, "sig", "", "Method signature, e.g. `balanceOf(address)(uint256)`")
	cmd.Flags().StringVar(&opts.Block, "block", "latest", "Block cursor: latest, pending, earliest or a number")
	cmd.Flags().IntVar(&opts.Returns, "returns", 1, "Number of return values to decode")
	return cmd
}

func sendCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [args...]",
		Short: "Submit a node-signed contract transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts.RpcURL)
			if err != nil {
				return err
			}
			method, err := core.NewMethod(opts.Signature)
			if err != nil {
				return err
			}
			txOpts, err := opts.txOptions()
			if err != nil {
				return err
			}

			hash, err := core.NewDispatcher(client).SendTx(cmd.Context(), txOpts, method, toAnySlice(args)...)
			if err != nil {
				return err
			}
			logger.Infof("Transaction hash: %v", hash)

			if opts.Wait {
				receipt, err := core.WaitForTxConfirmation(cmd.Context(), client, hash, txConfirmationTimeout)
				if err != nil {
					return err
				}
				logger.
					WithField("txHash", hash).
					WithField("status", receipt.Status).
					Infof("Transaction confirmed in block %v", receipt.BlockNumber)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Signature, "sig", "", "Method signature, e.g. `transfer(address,uint256)`")
	cmd.Flags().Uint64Var(&opts.GasLimit, "gas-limit", 0, "Gas limit, 0 lets the node estimate")
	cmd.Flags().StringVar(&opts.GasPriceWei, "gas-price", "", "Gas price in wei")
	cmd.Flags().StringVar(&opts.ValueEth, "value", "", "Value to send, in ether")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait for the transaction to be confirmed")
	return cmd
}

func deployCmd(opts *options) *cobra.Command {
	var byteCodeHex, ctorSig string
	cmd := &cobra.Command{
		Use:   "deploy [args...]",
		Short: "Submit a contract-creation transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts.RpcURL)
			if err != nil {
				return err
			}
			byteCode, err := hexToBytes(byteCodeHex)
			if err != nil {
				return fmt.Errorf("failed to parse byte code: %w", err)
			}
			var ctor *core.Constructor
			if ctorSig != "" {
				ctor, err = core.NewConstructor(ctorSig)
				if err != nil {
					return err
				}
			}
			txOpts, err := opts.txOptions()
			if err != nil {
				return err
			}

			hash, err := core.NewDispatcher(client).Deploy(cmd.Context(), txOpts, byteCode, ctor, toAnySlice(args)...)
			if err != nil {
				return err
			}
			logger.Infof("Deploy transaction hash: %v", hash)

			if opts.Wait {
				receipt, err := core.WaitForTxConfirmation(cmd.Context(), client, hash, txConfirmationTimeout)
				if err != nil {
					return err
				}
				logger.Infof("Contract deployed at %v", receipt.ContractAddress)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&byteCodeHex, "bytecode", "", "Contract byte code as hex")
	cmd.Flags().StringVar(&ctorSig, "ctor", "", "Constructor signature, e.g. `constructor(address,uint256)`")
	cmd.Flags().Uint64Var(&opts.GasLimit, "gas-limit", 0, "Gas limit, 0 lets the node estimate")
	cmd.Flags().StringVar(&opts.ValueEth, "value", "", "Value to send, in ether")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait for the transaction to be confirmed")
	return cmd
}

func watchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream decoded log events, backfilling history then polling live",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts.RpcURL)
			if err != nil {
				return err
			}
			address, err := types.AddressFromHex(opts.Address)
			if err != nil {
				return fmt.Errorf("failed to parse address %s: %w", opts.Address, err)
			}
			event, err := core.NewEvent(opts.Event)
			if err != nil {
				return err
			}

			filter := core.Filter{
				Address: []types.Address{address},
				Topics:  [][]types.Hash{{event.Topic0()}},
			}
			if opts.FromBlock != 0 {
				filter.FromBlock = types.BlockNumberFromBigIntPtr(new(big.Int).SetUint64(opts.FromBlock))
			}
			if opts.ToBlock != 0 {
				filter.ToBlock = types.BlockNumberFromBigIntPtr(new(big.Int).SetUint64(opts.ToBlock))
			}

			logger.Infof("Monitoring %s events on %v", event.Name(), address)

			monitor := core.NewMonitor(client, event.Decoder())
			return monitor.WatchFrom(cmd.Context(), filter, opts.Window, func(ev core.Event, log types.Log) core.Action {
				decoded, ok := ev.(*core.DecodedEvent)
				if !ok {
					return core.Continue
				}
				logger.
					WithField("block", decoded.BlockNumber).
					WithField("fields", decoded.Fields).
					Infof("%s event", decoded.EventName)
				return core.Continue
			})
		},
	}
	cmd.Flags().StringVar(&opts.Event, "event", "", "Event signature, e.g. `Transfer(address indexed from, address indexed to, uint256 value)`")
	cmd.Flags().Uint64Var(&opts.FromBlock, "from-block", 0, "Block number to backfill from, 0 means latest")
	cmd.Flags().Uint64Var(&opts.ToBlock, "to-block", 0, "Block number to stop at, 0 means follow the chain")
	cmd.Flags().Uint64Var(&opts.Window, "window", 0, "Backfill window size in blocks, 0 uses the default")
	return cmd
}

func messageCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Print the unsigned, replay-protected transaction message as hex",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := core.RawTxOptions{
				Nonce:    new(big.Int).SetUint64(opts.Nonce),
				GasLimit: new(big.Int).SetUint64(opts.Gas),
			}
			price, ok := new(big.Int).SetString(opts.GasPriceWei, 10)
			if !ok {
				return fmt.Errorf("invalid gas price %q", opts.GasPriceWei)
			}
			raw.GasPrice = price
			if opts.To != "" {
				to, err := types.AddressFromHex(opts.To)
				if err != nil {
					return fmt.Errorf("failed to parse to address %s: %w", opts.To, err)
				}
				raw.To = &to
			}
			if opts.ValueWei != "" {
				value, ok := new(big.Int).SetString(opts.ValueWei, 10)
				if !ok {
					return fmt.Errorf("invalid value %q", opts.ValueWei)
				}
				raw.Value = value
			}
			if opts.Data != "" {
				data, err := hexToBytes(opts.Data)
				if err != nil {
					return fmt.Errorf("failed to parse data: %w", err)
				}
				raw.Data = data
			}

			msg, err := raw.SigningMessage(new(big.Int).SetUint64(opts.ChainID))
			if err != nil {
				return err
			}
			fmt.Printf("0x%x\n", msg)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&opts.Nonce, "nonce", 0, "Transaction nonce")
	cmd.Flags().StringVar(&opts.GasPriceWei, "gas-price", "0", "Gas price in wei")
	cmd.Flags().Uint64Var(&opts.Gas, "gas", 21000, "Gas limit")
	cmd.Flags().StringVar(&opts.To, "to", "", "Recipient address, empty for contract creation")
	cmd.Flags().StringVar(&opts.ValueWei, "value", "", "Value in wei")
	cmd.Flags().StringVar(&opts.Data, "data", "", "Call or creation payload as hex")
	cmd.Flags().Uint64Var(&opts.ChainID, "chain-id", 1, "Chain id for replay protection")
	return cmd
}

func main() {
	prometheus.MustRegister(
		core.EventsCounter,
		core.TxErrorsCounter,
		core.FiltersCounter,
		core.FilterUninstallErrors,
		core.LastDeliveredBlockGauge,
	)

	var opts options
	root := &cobra.Command{
		Use:          "contract",
		Short:        "Interact with smart contracts over JSON-RPC",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.MetricsAddr != "" {
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					if err := http.ListenAndServe(opts.MetricsAddr, nil); err != nil {
						logger.Errorf("Failed to serve metrics: %v", err)
					}
				}()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.RpcURL, "rpc-url", "", "Node HTTP RPC URL, normally starts with https://****")
	root.PersistentFlags().StringVarP(&opts.Address, "address", "a", "", "Contract address. Example: `0x891E368fE81cBa2aC6F6cc4b98e684c106e2EF4f`")
	root.PersistentFlags().StringVar(&opts.From, "from", "", "Sender account address")
	root.PersistentFlags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "[Optional] Address to serve Prometheus metrics on")

	root.AddCommand(callCmd(&opts), sendCmd(&opts), deployCmd(&opts), watchCmd(&opts), messageCmd(&opts))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
