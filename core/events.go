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

	"github.com/defiweb/go-eth/abi"
	"github.com/defiweb/go-eth/types"
)

// Event is a decoded contract log event.
type Event interface {
	// Name returns the name of the event.
	Name() string
	// GetBlockNumber returns the block number of the event.
	GetBlockNumber() *big.Int
}

// LogDecoder turns a raw log into a typed event. Implementations are
// usually built per event shape on top of EventDef.DecodeValues.
type LogDecoder interface {
	DecodeLog(log types.Log) (Event, error)
}

// DecoderFunc adapts a function to the LogDecoder interface.
type DecoderFunc func(log types.Log) (Event, error)

func (f DecoderFunc) DecodeLog(log types.Log) (Event, error) {
	return f(log)
}

// EventDef is a contract event selected by its textual signature, e.g.
// "Transfer(address indexed from, address indexed to, uint256 value)".
type EventDef struct {
	event *abi.Event
}

func NewEvent(signature string) (*EventDef, error) {
	e, err := abi.ParseEvent(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event signature %q: %w", signature, err)
	}
	return &EventDef{event: e}, nil
}

func MustNewEvent(signature string) *EventDef {
	e, err := NewEvent(signature)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *EventDef) Name() string {
	return e.event.Name()
}

// Topic0 returns the hash identifying the event in a log's first topic.
func (e *EventDef) Topic0() types.Hash {
	return e.event.Topic0()
}

// DecodeValues decodes the log's topics and data into the given pointers,
// indexed arguments first.
func (e *EventDef) DecodeValues(log types.Log, values ...any) error {
	return e.event.DecodeValues(log.Topics, log.Data, values...)
}

// Decoder returns a generic LogDecoder producing DecodedEvent values with
// the event's arguments in a name-keyed map. Typed decoders are preferable
// when the event shape is known at compile time.
func (e *EventDef) Decoder() LogDecoder {
	return DecoderFunc(func(log types.Log) (Event, error) {
		fields := map[string]any{}
		if err := e.event.DecodeValue(log.Topics, log.Data, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", e.Name(), err)
		}
		return &DecodedEvent{
			EventName:   e.Name(),
			BlockNumber: log.BlockNumber,
			Fields:      fields,
			Log:         log,
		}, nil
	})
}

// DecodedEvent is the generic decoded form of a contract log event.
type DecodedEvent struct {
	EventName   string
	BlockNumber *big.Int
	Fields      map[string]any
	Log         types.Log
}

func (d *DecodedEvent) Name() string {
	return d.EventName
}

func (d *DecodedEvent) GetBlockNumber() *big.Int {
	return d.BlockNumber
}
