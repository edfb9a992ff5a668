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
	"math/big"

	"github.com/defiweb/go-eth/types"
	"github.com/stretchr/testify/mock"
)

type mockRPCClient struct {
	mock.Mock
}

func (m *mockRPCClient) BlockNumber(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	bn := args.Get(0)
	if bn == nil {
		return nil, args.Error(1)
	}
	return bn.(*big.Int), args.Error(1)
}

func (m *mockRPCClient) Call(ctx context.Context, call *types.Call, block types.BlockNumber) ([]byte, *types.Call, error) {
	args := m.Called(ctx, call, block)
	var result []byte
	if args.Get(0) != nil {
		result = args.Get(0).([]byte)
	}
	return result, call, args.Error(1)
}

func (m *mockRPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, *types.Transaction, error) {
	args := m.Called(ctx, tx)
	hash := args.Get(0)
	if hash == nil {
		return nil, tx, args.Error(1)
	}
	return hash.(*types.Hash), tx, args.Error(1)
}

func (m *mockRPCClient) GetLogs(ctx context.Context, query *types.FilterLogsQuery) ([]types.Log, error) {
	args := m.Called(ctx, query)
	logs := args.Get(0)
	if logs == nil {
		return nil, args.Error(1)
	}
	return logs.([]types.Log), args.Error(1)
}

func (m *mockRPCClient) NewFilter(ctx context.Context, query *types.FilterLogsQuery) (*big.Int, error) {
	args := m.Called(ctx, query)
	id := args.Get(0)
	if id == nil {
		return nil, args.Error(1)
	}
	return id.(*big.Int), args.Error(1)
}

func (m *mockRPCClient) GetFilterChanges(ctx context.Context, id *big.Int) ([]types.Log, error) {
	args := m.Called(ctx, id)
	logs := args.Get(0)
	if logs == nil {
		return nil, args.Error(1)
	}
	return logs.([]types.Log), args.Error(1)
}

func (m *mockRPCClient) UninstallFilter(ctx context.Context, id *big.Int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRPCClient) GetTransactionReceipt(ctx context.Context, hash types.Hash) (*types.TransactionReceipt, error) {
	args := m.Called(ctx, hash)
	receipt := args.Get(0)
	if receipt == nil {
		return nil, args.Error(1)
	}
	return receipt.(*types.TransactionReceipt), args.Error(1)
}
