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
)

// NullStorageError is returned by Dispatcher.Call when the node answered
// with an empty byte string. An empty result means either that there is no
// contract code at the target address or that the call reverted without
// returning data. It is a recoverable, typed outcome and callers are
// expected to match it with errors.As.
type NullStorageError struct {
	// Signature is the textual signature of the attempted method.
	Signature string
	// Data is the full calldata that was sent, selector included.
	Data []byte
}

func (e *NullStorageError) Error() string {
	return fmt.Sprintf("call to %s returned no data: no contract code at address or revert without return value", e.Signature)
}

// DecodeError is returned by Dispatcher.Call when the node answered with a
// non-empty result that the method's return types cannot decode. It signals
// an ABI mismatch between the caller and the on-chain contract and must not
// be swallowed.
type DecodeError struct {
	Signature string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s call result: %v", e.Signature, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
