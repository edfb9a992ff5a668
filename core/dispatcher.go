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

package core

import (
	"context"
	"fmt"

	"github.com/defiweb/go-eth/types"
)

// Dispatcher implements call, send and deploy semantics for contract
// methods on top of an RPCClient. It is stateless; concurrent use against
// the same client is safe, with no ordering guarantee between invocations.
type Dispatcher struct {
	client RPCClient
}

func NewDispatcher(client RPCClient) *Dispatcher {
	return &Dispatcher{client: client}
}

// SendTx encodes the method call, merges it into the transaction options and
// submits the transaction through the node. The returned hash is opaque and
// passed through unchanged; the result of the call is only observable once
// the transaction is mined.
func (d *Dispatcher) SendTx(ctx context.Context, opts TxOptions, method *Method, args ...any) (*types.Hash, error) {
	calldata, err := method.EncodeArgs(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s args: %w", method.Signature(), err)
	}

	tx := opts.apply(&types.Transaction{}).SetInput(calldata)

	hash, _, err := d.client.SendTransaction(ctx, tx)
	if err != nil {
		TxErrorsCounter.WithLabelValues(method.Name()).Inc()
		return nil, fmt.Errorf("failed to send %s transaction: %w", method.Name(), err)
	}
	return hash, nil
}

// Call performs a read-only call at the given block cursor and decodes the
// result into the given pointers. An empty raw result yields a
// *NullStorageError: the target address holds no contract code or the call
// reverted without data. A non-empty result that the return types cannot
// decode yields a *DecodeError, which indicates an ABI mismatch and is never
// converted into a default value.
func (d *Dispatcher) Call(ctx context.Context, opts TxOptions, block types.BlockNumber, method *Method, args []any, returns ...any) error {
	calldata, err := method.EncodeArgs(args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s args: %w", method.Signature(), err)
	}

	call := opts.toCall()
	call.Input = calldata

	result, _, err := d.client.Call(ctx, call, block)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method.Name(), err)
	}

	if err := method.DecodeValues(result, returns...); err != nil {
		if len(result) == 0 {
			return &NullStorageError{Signature: method.Signature(), Data: calldata}
		}
		return &DecodeError{Signature: method.Signature(), Err: err}
	}
	return nil
}

// Deploy submits a contract-creation transaction. The payload is the byte
// code followed by the encoded constructor arguments; constructor calls
// carry no selector. A nil constructor deploys the byte code as-is.
func (d *Dispatcher) Deploy(ctx context.Context, opts TxOptions, byteCode []byte, ctor *Constructor, args ...any) (*types.Hash, error) {
	data := byteCode
	if ctor != nil {
		var err error
		data, err = ctor.DeployData(byteCode, args...)
		if err != nil {
			return nil, err
		}
	}

	tx := opts.apply(&types.Transaction{}).SetInput(data)

	hash, _, err := d.client.SendTransaction(ctx, tx)
	if err != nil {
		TxErrorsCounter.WithLabelValues("deploy").Inc()
		return nil, fmt.Errorf("failed to send deploy transaction: %w", err)
	}
	return hash, nil
}
