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
	"fmt"
	"math/big"

	"github.com/defiweb/go-eth/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// RawTxOptions holds the parameters of a locally signed transaction. All
// numeric fields are arbitrary-precision and must be non-negative. A nil To
// means contract creation; a nil Value means no value transfer. Both encode
// as the RLP empty marker, not as zero-padded values.
type RawTxOptions struct {
	Nonce    *big.Int
	GasPrice *big.Int
	GasLimit *big.Int
	To       *types.Address
	Value    *big.Int
	Data     []byte
}

// unsignedTx is the EIP-155 signing sequence. Field order and count are
// fixed by the wire format: nonce, gasPrice, gas, to, value, data, chainId,
// 0, 0. The two trailing zeros are placeholders consumed by the signature's
// v-derivation.
type unsignedTx struct {
	Nonce    *big.Int
	GasPrice *big.Int
	Gas      *big.Int
	To       []byte
	Value    *big.Int
	Data     []byte
	ChainID  *big.Int
	ZeroR    uint
	ZeroS    uint
}

// SigningMessage returns the RLP encoding of the unsigned, replay-protected
// transaction. The result is the byte string a signer must hash and sign; it
// is not itself a signed transaction.
func (o RawTxOptions) SigningMessage(chainID *big.Int) ([]byte, error) {
	for name, v := range map[string]*big.Int{
		"nonce":    o.Nonce,
		"gasPrice": o.GasPrice,
		"gas":      o.GasLimit,
		"chainId":  chainID,
	} {
		if v == nil {
			return nil, fmt.Errorf("raw transaction field %s is not set", name)
		}
		if v.Sign() < 0 {
			return nil, fmt.Errorf("raw transaction field %s is negative", name)
		}
	}
	if o.Value != nil && o.Value.Sign() < 0 {
		return nil, fmt.Errorf("raw transaction field value is negative")
	}

	msg := unsignedTx{
		Nonce:    o.Nonce,
		GasPrice: o.GasPrice,
		Gas:      o.GasLimit,
		Value:    o.Value,
		Data:     o.Data,
		ChainID:  chainID,
	}
	if o.To != nil {
		msg.To = o.To.Bytes()
	}

	encoded, err := rlp.EncodeToBytes(&msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode raw transaction: %w", err)
	}
	return encoded, nil
}
