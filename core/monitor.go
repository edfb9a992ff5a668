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
	"math/big"
	"time"

	"github.com/defiweb/go-eth/types"
	logger "github.com/sirupsen/logrus"
)

const (
	// DefaultBackfillWindow is the block-range width used for historical
	// eth_getLogs requests when the caller does not pick one.
	DefaultBackfillWindow = 1024

	// defaultPollInterval is one mainnet slot; a live filter cannot produce
	// new logs faster than blocks are produced.
	defaultPollInterval = 12 * time.Second
)

// Filter describes the log subscription to monitor. A nil FromBlock means
// the latest block; a nil ToBlock means the subscription is open-ended.
type Filter struct {
	Address   []types.Address
	Topics    [][]types.Hash
	FromBlock *types.BlockNumber
	ToBlock   *types.BlockNumber
}

// Action is the handler's directive after each delivered event.
type Action int

const (
	// Continue requests the next event.
	Continue Action = iota
	// Terminate stops the stream. No further events are delivered once
	// Terminate is returned.
	Terminate
)

// Handler is invoked once per decoded log event, in non-decreasing
// block-number order and within a block in log-index order.
type Handler func(ev Event, log types.Log) Action

// Monitor stitches historical backfill and live filter polling into one
// ordered event stream per Watch invocation. The server-side filter it may
// install is owned by that invocation alone and is always uninstalled,
// whichever way the invocation ends.
type Monitor struct {
	client       RPCClient
	decoder      LogDecoder
	window       uint64
	pollInterval time.Duration
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithBackfillWindow overrides the default historical window width.
func WithBackfillWindow(window uint64) MonitorOption {
	return func(m *Monitor) {
		if window > 0 {
			m.window = window
		}
	}
}

// WithPollInterval overrides the live-filter polling interval.
func WithPollInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) {
		if interval > 0 {
			m.pollInterval = interval
		}
	}
}

func NewMonitor(client RPCClient, decoder LogDecoder, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		client:       client,
		decoder:      decoder,
		window:       DefaultBackfillWindow,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Watch is WatchFrom with the monitor's configured backfill window.
func (m *Monitor) Watch(ctx context.Context, filter Filter, handler Handler) error {
	return m.WatchFrom(ctx, filter, 0, handler)
}

// WatchFrom monitors the filter, first backfilling historical logs in
// windows of windowSize blocks, then polling a live server-side filter for
// new ones. windowSize 0 means the monitor's configured default. WatchFrom
// returns nil when the handler terminates the stream or the filter's block
// range is exhausted, and the first fault otherwise. Handler invocations are
// strictly ordered; there is no reordering across the backfill-to-poll
// transition.
func (m *Monitor) WatchFrom(ctx context.Context, filter Filter, windowSize uint64, handler Handler) error {
	if windowSize == 0 {
		windowSize = m.window
	}

	head, err := m.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block number: %w", err)
	}

	// toBlock stays nil for an open-ended subscription. Latest pins the
	// range to the head observed now; Pending keeps it open.
	var toBlock *big.Int
	if filter.ToBlock != nil && !filter.ToBlock.IsPending() {
		toBlock = resolveCursor(*filter.ToBlock, head)
	}

	startingBlock := resolveCursor(latestIfNil(filter.FromBlock), head)

	pollingFrom := startingBlock
	if startingBlock.Cmp(head) < 0 {
		// The request starts behind the chain head and needs backfill up
		// to the head (or the ceiling, if it is closer).
		ceiling := new(big.Int).Set(head)
		if toBlock != nil && toBlock.Cmp(ceiling) < 0 {
			ceiling.Set(toBlock)
		}

		logger.Debugf("Backfilling logs from block %v to %v", startingBlock, ceiling)
		backfill := newHistoricalStream(m.client, m.decoder, filter, startingBlock, ceiling, windowSize)
		terminated, err := m.reduce(ctx, backfill, handler)
		if err != nil {
			return err
		}
		if terminated {
			// Terminated during backfill: the live filter is never created.
			return nil
		}
		pollingFrom = new(big.Int).Add(ceiling, big.NewInt(1))
	}

	if toBlock != nil && toBlock.Cmp(pollingFrom) < 0 {
		// Fully satisfied by backfill alone.
		return nil
	}

	return m.poll(ctx, filter, pollingFrom, toBlock, handler)
}

// poll installs a server-side filter for [from, toBlock] and runs the live
// stream through the handler. The filter is uninstalled on every exit path;
// an uninstall failure is logged and never masks the stream's own outcome.
func (m *Monitor) poll(ctx context.Context, filter Filter, from, toBlock *big.Int, handler Handler) error {
	query := &types.FilterLogsQuery{
		Address:   filter.Address,
		Topics:    filter.Topics,
		FromBlock: types.BlockNumberFromBigIntPtr(from),
	}
	if toBlock != nil {
		query.ToBlock = types.BlockNumberFromBigIntPtr(toBlock)
	}

	filterID, err := m.client.NewFilter(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to install log filter: %w", err)
	}
	FiltersCounter.Inc()
	logger.Debugf("Installed log filter %v, polling from block %v", filterID, from)

	defer func() {
		// The uninstall must run even when ctx is already cancelled.
		removed, err := m.client.UninstallFilter(context.Background(), filterID)
		if err != nil || !removed {
			FilterUninstallErrors.Inc()
			logger.Warnf("Failed to uninstall log filter %v with error: %v", filterID, err)
		}
	}()

	live := newPollStream(m.client, m.decoder, filterID, toBlock, m.pollInterval)
	_, err = m.reduce(ctx, live, handler)
	return err
}

// reduce is the shared reduction loop: one handler invocation per event, in
// stream order, stopping on Terminate, stream exhaustion, or a fault.
func (m *Monitor) reduce(ctx context.Context, stream LogStream, handler Handler) (terminated bool, err error) {
	for {
		ev, log, ok, err := stream.Next(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}

		EventsCounter.WithLabelValues(ev.Name()).Inc()
		if bn := ev.GetBlockNumber(); bn != nil {
			LastDeliveredBlockGauge.Set(float64(bn.Uint64()))
		}

		if handler(ev, log) == Terminate {
			return true, nil
		}
	}
}

func latestIfNil(cursor *types.BlockNumber) types.BlockNumber {
	if cursor == nil {
		return types.LatestBlockNumber
	}
	return *cursor
}

// resolveCursor maps a block cursor to a concrete block number against the
// given chain head. Latest and Pending resolve to the head, Earliest to
// zero, a concrete number to itself.
func resolveCursor(cursor types.BlockNumber, head *big.Int) *big.Int {
	switch {
	case cursor.IsEarliest():
		return big.NewInt(0)
	case cursor.IsTag():
		return new(big.Int).Set(head)
	default:
		return cursor.Big()
	}
}
