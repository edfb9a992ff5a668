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
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/defiweb/go-eth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testAddress = types.MustAddressFromHex("0x1F7acDa376eF37EC371235a094113dF9Cb4EfEe1")
	testHolder  = types.MustAddressFromHex("0x6813eb9362372EEF6200f3b1dbC3f819671cBA69")
)

func TestCallDecodesResult(t *testing.T) {
	client := new(mockRPCClient)
	method := MustNewMethod("balanceOf(address)(uint256)")

	// A single 32-byte word with the value 42.
	result := make([]byte, 32)
	result[31] = 42
	client.On("Call", mock.Anything, mock.Anything, types.LatestBlockNumber).
		Return(result, nil)

	var balance *big.Int
	opts := TxOptions{}.WithTo(testAddress)
	err := NewDispatcher(client).Call(context.Background(), opts, types.LatestBlockNumber, method, []any{testHolder}, &balance)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), balance)
	client.AssertExpectations(t)
}

func TestCallEmptyResultIsNullStorage(t *testing.T) {
	client := new(mockRPCClient)
	method := MustNewMethod("balanceOf(address)(uint256)")

	client.On("Call", mock.Anything, mock.Anything, types.LatestBlockNumber).
		Return([]byte{}, nil)

	var balance *big.Int
	opts := TxOptions{}.WithTo(testAddress)
	err := NewDispatcher(client).Call(context.Background(), opts, types.LatestBlockNumber, method, []any{testHolder}, &balance)

	var nullErr *NullStorageError
	require.ErrorAs(t, err, &nullErr)
	assert.Equal(t, "balanceOf(address)(uint256)", nullErr.Signature)
	// The error carries the full calldata, selector included.
	require.Len(t, nullErr.Data, 4+32)
	assert.Equal(t, []byte{0x70, 0xa0, 0x82, 0x31}, nullErr.Data[:4])
	assert.Nil(t, balance)
}

func TestCallMalformedResultIsDecodeError(t *testing.T) {
	client := new(mockRPCClient)
	method := MustNewMethod("balanceOf(address)(uint256)")

	// Non-empty but too short for a uint256 word.
	client.On("Call", mock.Anything, mock.Anything, types.LatestBlockNumber).
		Return([]byte{0x01, 0x02, 0x03}, nil)

	var balance *big.Int
	opts := TxOptions{}.WithTo(testAddress)
	err := NewDispatcher(client).Call(context.Background(), opts, types.LatestBlockNumber, method, []any{testHolder}, &balance)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	var nullErr *NullStorageError
	assert.False(t, errors.As(err, &nullErr))
}

func TestCallTransportFaultPropagates(t *testing.T) {
	client := new(mockRPCClient)
	method := MustNewMethod("balanceOf(address)(uint256)")

	client.On("Call", mock.Anything, mock.Anything, types.LatestBlockNumber).
		Return(nil, fmt.Errorf("connection refused"))

	var balance *big.Int
	err := NewDispatcher(client).Call(context.Background(), TxOptions{}.WithTo(testAddress), types.LatestBlockNumber, method, []any{testHolder}, &balance)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendTxReturnsHashUnchanged(t *testing.T) {
	client := new(mockRPCClient)
	method := MustNewMethod("transfer(address,uint256)")
	hash := types.MustHashFromHex("0x00000000000000000000000000000000000000000000000000000000000000aa", types.PadNone)

	client.On("SendTransaction", mock.Anything, mock.MatchedBy(func(tx *types.Transaction) bool {
		return tx.To != nil && *tx.To == testAddress &&
			len(tx.Input) == 4+2*32 &&
			tx.Input[0] == 0xa9 && tx.Input[1] == 0x05 && tx.Input[2] == 0x9c && tx.Input[3] == 0xbb
	})).Return(&hash, nil)

	opts := TxOptions{}.WithTo(testAddress).WithGasLimit(100000)
	got, err := NewDispatcher(client).SendTx(context.Background(), opts, method, testHolder, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, &hash, got)
	client.AssertExpectations(t)
}

func TestDeploySendsByteCodeWithoutSelector(t *testing.T) {
	client := new(mockRPCClient)
	hash := types.MustHashFromHex("0x00000000000000000000000000000000000000000000000000000000000000bb", types.PadNone)
	byteCode := []byte{0x60, 0x80, 0x60, 0x40}

	client.On("SendTransaction", mock.Anything, mock.MatchedBy(func(tx *types.Transaction) bool {
		// Creation transactions carry no recipient; the payload starts with
		// the byte code, not a selector.
		return tx.To == nil && len(tx.Input) == len(byteCode)+32 &&
			tx.Input[0] == 0x60
	})).Return(&hash, nil)

	ctor := MustNewConstructor("constructor(uint256)")
	got, err := NewDispatcher(client).Deploy(context.Background(), TxOptions{}, byteCode, ctor, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, &hash, got)
	client.AssertExpectations(t)
}
