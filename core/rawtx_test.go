// Copyright (C) 2021-2023 Chronicle Labs, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/defiweb/go-eth/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The reference signing message from the EIP-155 specification: nonce 9,
// gas price 20 gwei, gas 21000, value 1 ether, no data, chain id 1.
func TestSigningMessageVector(t *testing.T) {
	to := types.MustAddressFromHex("0x3535353535353535353535353535353535353535")
	value, _ := new(big.Int).SetString("1000000000000000000", 10)

	raw := RawTxOptions{
		Nonce:    big.NewInt(9),
		GasPrice: big.NewInt(20000000000),
		GasLimit: big.NewInt(21000),
		To:       &to,
		Value:    value,
	}

	msg, err := raw.SigningMessage(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t,
		"ec098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080018080",
		hex.EncodeToString(msg),
	)
}

func TestSigningMessageShape(t *testing.T) {
	raw := RawTxOptions{
		Nonce:    big.NewInt(9),
		GasPrice: big.NewInt(1),
		GasLimit: big.NewInt(21000),
		Data:     []byte{0xca, 0xfe},
	}

	msg, err := raw.SigningMessage(big.NewInt(61))
	require.NoError(t, err)

	var elems []rlp.RawValue
	require.NoError(t, rlp.DecodeBytes(msg, &elems))

	// Exactly 9 elements: nonce, gasPrice, gas, to, value, data, chainId, 0, 0.
	require.Len(t, elems, 9)
	assert.Equal(t, rlp.RawValue{0x09}, elems[0])
	// Absent to and value encode as the empty marker, not as zero words.
	assert.Equal(t, rlp.RawValue{0x80}, elems[3])
	assert.Equal(t, rlp.RawValue{0x80}, elems[4])
	assert.Equal(t, rlp.RawValue{0x82, 0xca, 0xfe}, elems[5])
	assert.Equal(t, rlp.RawValue{0x3d}, elems[6])
	assert.Equal(t, rlp.RawValue{0x80}, elems[7])
	assert.Equal(t, rlp.RawValue{0x80}, elems[8])
}

func TestSigningMessageValidation(t *testing.T) {
	raw := RawTxOptions{
		GasPrice: big.NewInt(1),
		GasLimit: big.NewInt(21000),
	}

	// Missing nonce.
	_, err := raw.SigningMessage(big.NewInt(1))
	assert.Error(t, err)

	// Negative nonce.
	raw.Nonce = big.NewInt(-1)
	_, err = raw.SigningMessage(big.NewInt(1))
	assert.Error(t, err)

	// Negative value.
	raw.Nonce = big.NewInt(0)
	raw.Value = big.NewInt(-5)
	_, err = raw.SigningMessage(big.NewInt(1))
	assert.Error(t, err)

	// Missing chain id.
	raw.Value = nil
	_, err = raw.SigningMessage(nil)
	assert.Error(t, err)
}
