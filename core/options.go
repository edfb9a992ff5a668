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
	"math/big"

	"github.com/defiweb/go-eth/types"
)

var weiPerEther = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// EtherToWei converts an ether amount to wei, truncating below one wei.
func EtherToWei(eth *big.Float) *big.Int {
	wei, _ := new(big.Float).Mul(eth, weiPerEther).Int(nil)
	return wei
}

// TxOptions holds the caller-controlled parameters of a node-signed
// transaction. A nil field means "let the node decide". Every With* builder
// returns an updated copy, so a field set by the caller is never clobbered
// afterwards; the calldata and the final value assignment are owned by the
// dispatcher.
type TxOptions struct {
	From     *types.Address
	To       *types.Address
	GasLimit *uint64
	GasPrice *big.Int
	Value    *big.Int // wei
}

func (o TxOptions) WithFrom(from types.Address) TxOptions {
	o.From = &from
	return o
}

func (o TxOptions) WithTo(to types.Address) TxOptions {
	o.To = &to
	return o
}

func (o TxOptions) WithGasLimit(gasLimit uint64) TxOptions {
	o.GasLimit = &gasLimit
	return o
}

func (o TxOptions) WithGasPrice(gasPrice *big.Int) TxOptions {
	o.GasPrice = gasPrice
	return o
}

// WithValue sets the transaction value in wei.
func (o TxOptions) WithValue(wei *big.Int) TxOptions {
	o.Value = wei
	return o
}

// WithEther sets the transaction value from an ether amount. The amount is
// converted to wei at set time.
func (o TxOptions) WithEther(eth *big.Float) TxOptions {
	o.Value = EtherToWei(eth)
	return o
}

// toCall maps the options onto a read-only call message. Input is left for
// the dispatcher to fill in.
func (o TxOptions) toCall() *types.Call {
	call := &types.Call{
		To:       o.To,
		From:     o.From,
		GasLimit: o.GasLimit,
		GasPrice: o.GasPrice,
		Value:    o.Value,
	}
	return call
}

// apply copies the set fields onto a transaction. Unset fields are left for
// the node (or a tx modifier) to fill in.
func (o TxOptions) apply(tx *types.Transaction) *types.Transaction {
	if o.To != nil {
		tx.SetTo(*o.To)
	}
	if o.From != nil {
		tx.SetFrom(*o.From)
	}
	if o.GasLimit != nil {
		tx.SetGasLimit(*o.GasLimit)
	}
	if o.GasPrice != nil {
		tx.SetGasPrice(o.GasPrice)
	}
	if o.Value != nil {
		tx.SetValue(o.Value)
	}
	return tx
}
