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

// LogStream is a pull-based sequence of decoded log events. Next returns the
// next event with its source log, or ok=false when the stream is exhausted.
// A consumer that stops calling Next abandons the stream; no further round
// trips are issued on its behalf.
type LogStream interface {
	Next(ctx context.Context) (ev Event, log types.Log, ok bool, err error)
}

// historicalStream fetches already-mined logs in block-number windows from a
// start block up to a fixed inclusive ceiling. Events are produced in block
// order, within a block in the order the node returns them (log index).
type historicalStream struct {
	client  RPCClient
	decoder LogDecoder
	filter  Filter
	cursor  *big.Int
	ceiling *big.Int
	window  uint64
	buf     []types.Log
}

func newHistoricalStream(client RPCClient, decoder LogDecoder, filter Filter, from, ceiling *big.Int, window uint64) *historicalStream {
	if window == 0 {
		window = 1
	}
	return &historicalStream{
		client:  client,
		decoder: decoder,
		filter:  filter,
		cursor:  new(big.Int).Set(from),
		ceiling: new(big.Int).Set(ceiling),
		window:  window,
	}
}

func (s *historicalStream) Next(ctx context.Context) (Event, types.Log, bool, error) {
	for {
		if len(s.buf) > 0 {
			log := s.buf[0]
			s.buf = s.buf[1:]
			ev, err := s.decoder.DecodeLog(log)
			if err != nil {
				// An undecodable log in the range is skipped, not fatal.
				logger.Errorf("Failed to decode log from block %v with error: %v", log.BlockNumber, err)
				continue
			}
			return ev, log, true, nil
		}

		if s.cursor.Cmp(s.ceiling) > 0 {
			return nil, types.Log{}, false, nil
		}

		to := new(big.Int).Add(s.cursor, new(big.Int).SetUint64(s.window-1))
		if to.Cmp(s.ceiling) > 0 {
			to.Set(s.ceiling)
		}

		logs, err := s.client.GetLogs(ctx, &types.FilterLogsQuery{
			Address:   s.filter.Address,
			Topics:    s.filter.Topics,
			FromBlock: types.BlockNumberFromBigIntPtr(s.cursor),
			ToBlock:   types.BlockNumberFromBigIntPtr(to),
		})
		if err != nil {
			return nil, types.Log{}, false, fmt.Errorf("failed to get logs for blocks [%v, %v]: %w", s.cursor, to, err)
		}

		s.buf = logs
		s.cursor = to.Add(to, big.NewInt(1))
	}
}

// pollStream fetches newly-appeared logs for a live server-side filter. It
// is open-ended unless a ceiling is set, in which case it ends once the
// chain head has passed the ceiling and no matching logs remain.
type pollStream struct {
	client   RPCClient
	decoder  LogDecoder
	filterID *big.Int
	ceiling  *big.Int // nil means no ceiling
	interval time.Duration
	buf      []types.Log
}

func newPollStream(client RPCClient, decoder LogDecoder, filterID, ceiling *big.Int, interval time.Duration) *pollStream {
	return &pollStream{
		client:   client,
		decoder:  decoder,
		filterID: filterID,
		ceiling:  ceiling,
		interval: interval,
	}
}

func (s *pollStream) Next(ctx context.Context) (Event, types.Log, bool, error) {
	for {
		if len(s.buf) > 0 {
			log := s.buf[0]
			s.buf = s.buf[1:]
			if s.ceiling != nil && log.BlockNumber != nil && log.BlockNumber.Cmp(s.ceiling) > 0 {
				return nil, types.Log{}, false, nil
			}
			ev, err := s.decoder.DecodeLog(log)
			if err != nil {
				logger.Errorf("Failed to decode log from block %v with error: %v", log.BlockNumber, err)
				continue
			}
			return ev, log, true, nil
		}

		logs, err := s.client.GetFilterChanges(ctx, s.filterID)
		if err != nil {
			return nil, types.Log{}, false, fmt.Errorf("failed to poll filter %v: %w", s.filterID, err)
		}
		if len(logs) > 0 {
			s.buf = logs
			continue
		}

		if s.ceiling != nil {
			head, err := s.client.BlockNumber(ctx)
			if err != nil {
				return nil, types.Log{}, false, fmt.Errorf("failed to get block number: %w", err)
			}
			if head.Cmp(s.ceiling) > 0 {
				return nil, types.Log{}, false, nil
			}
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, types.Log{}, false, ctx.Err()
		case <-timer.C:
		}
	}
}
