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

	"github.com/defiweb/go-eth/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorOf derives the 4-byte method selector from a textual method
// signature, e.g. SelectorOf("transfer(address,uint256)"). The result is a
// pure function of the signature string.
func SelectorOf(signature string) [4]byte {
	var selector [4]byte
	copy(selector[:], crypto.Keccak256([]byte(signature)))
	return selector
}

// Method is a contract method selected by its textual signature. It carries
// the encode/decode pair for the method's argument and return value shapes
// and is passed to the dispatcher by explicit value.
type Method struct {
	method    *abi.Method
	signature string
}

// NewMethod parses a method signature, e.g. "balanceOf(address)(uint256)".
// Return types are part of the signature but not of the selector.
func NewMethod(signature string) (*Method, error) {
	m, err := abi.ParseMethod(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse method signature %q: %w", signature, err)
	}
	return &Method{method: m, signature: signature}, nil
}

// MustNewMethod is like NewMethod but panics on a malformed signature.
func MustNewMethod(signature string) *Method {
	m, err := NewMethod(signature)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Method) Name() string {
	return m.method.Name()
}

// Signature returns the signature the method was created from.
func (m *Method) Signature() string {
	return m.signature
}

// CanonicalSignature returns the canonical form used for selector
// derivation: the method name followed by the canonical argument tuple.
func (m *Method) CanonicalSignature() string {
	return m.method.Name() + m.method.Inputs().CanonicalType()
}

// Selector returns the 4-byte selector identifying the method on chain.
func (m *Method) Selector() [4]byte {
	return SelectorOf(m.CanonicalSignature())
}

// EncodeArgs produces the full calldata for the method: the 4-byte selector
// followed by the ABI-encoded arguments.
func (m *Method) EncodeArgs(args ...any) ([]byte, error) {
	return m.method.EncodeArgs(args...)
}

// DecodeValues decodes a call result into the given pointers.
func (m *Method) DecodeValues(data []byte, returns ...any) error {
	return m.method.DecodeValues(data, returns...)
}

// Constructor describes a contract constructor. Constructor calls have no
// selector; deploy data is the contract byte code followed by the
// ABI-encoded constructor arguments.
type Constructor struct {
	ctor      *abi.Constructor
	signature string
}

// NewConstructor parses a constructor signature, e.g. "constructor(address,uint256)".
func NewConstructor(signature string) (*Constructor, error) {
	c, err := abi.ParseConstructor(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse constructor signature %q: %w", signature, err)
	}
	return &Constructor{ctor: c, signature: signature}, nil
}

// MustNewConstructor is like NewConstructor but panics on a malformed signature.
func MustNewConstructor(signature string) *Constructor {
	c, err := NewConstructor(signature)
	if err != nil {
		panic(err)
	}
	return c
}

// DeployData assembles the payload for a contract-creation transaction.
func (c *Constructor) DeployData(byteCode []byte, args ...any) ([]byte, error) {
	data, err := c.ctor.EncodeArgs(byteCode, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor args: %w", err)
	}
	return data, nil
}
