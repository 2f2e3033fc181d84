/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package relay forwards committed point events from the outbox to external sinks.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"club-points-ledger/internal/models"

	"go.uber.org/zap"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 100
)

// Sink receives point events. Deliveries are at-least-once, so a sink must
// treat a repeated event key as already handled.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event models.PointEvent) error
}

// Outbox is the slice of the store the relay reads and acknowledges.
type Outbox interface {
	FetchOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	AckOutbox(ctx context.Context, seq int64) error
}

// Config contains configuration for Relay
type Config struct {
	Outbox          Outbox
	Sinks           []Sink
	PollingInterval time.Duration
	BatchSize       int
}

// Relay polls the outbox and delivers events in commit order
type Relay struct {
	outbox          Outbox
	sinks           []Sink
	pollingInterval time.Duration
	batchSize       int

	startOnce sync.Once
	started   bool

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

func New(cfg Config) *Relay {
	interval := cfg.PollingInterval
	if interval <= 0 {
		interval = defaultPollingInterval
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Relay{
		outbox:          cfg.Outbox,
		sinks:           cfg.Sinks,
		pollingInterval: interval,
		batchSize:       batch,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start launches the polling loop
func (r *Relay) Start(ctx context.Context) error {
	if r.outbox == nil {
		return errors.New("relay outbox is required")
	}
	if len(r.sinks) == 0 {
		return errors.New("relay has no sinks configured")
	}

	r.startOnce.Do(func() {
		r.started = true
		go r.pollLoop(ctx)
	})

	names := make([]string, len(r.sinks))
	for i, sink := range r.sinks {
		names[i] = sink.Name()
	}
	zap.L().Info("Point event relay started",
		zap.Duration("polling_interval", r.pollingInterval),
		zap.Int("batch_size", r.batchSize),
		zap.Strings("sinks", names))
	return nil
}

// Stop signals the loop and waits for the in-flight batch to finish
func (r *Relay) Stop() {
	if !r.started {
		return
	}
	zap.L().Info("Stopping point event relay")
	close(r.stopChan)
	<-r.doneChan
	zap.L().Info("Point event relay stopped")
}

func (r *Relay) pollLoop(ctx context.Context) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.pollingInterval)
	defer ticker.Stop()

	r.drainLogged(ctx)

	for {
		select {
		case <-ticker.C:
			r.drainLogged(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Relay) drainLogged(ctx context.Context) {
	delivered, err := r.DrainOnce(ctx)
	if err != nil {
		zap.L().Error("Relay batch stopped early",
			zap.Int("delivered", delivered),
			zap.Error(err))
		return
	}
	if delivered > 0 {
		zap.L().Info("Relayed point events", zap.Int("delivered", delivered))
	}
}

// DrainOnce delivers one batch. It stops at the first failing entry so later
// events are never delivered ahead of an earlier one.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchOutbox(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch outbox: %w", err)
	}

	delivered := 0
	for _, entry := range entries {
		if err := r.deliver(ctx, entry.Event); err != nil {
			return delivered, err
		}
		if err := r.outbox.AckOutbox(ctx, entry.Seq); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (r *Relay) deliver(ctx context.Context, event models.PointEvent) error {
	for _, sink := range r.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			zap.L().Warn("Sink rejected point event",
				zap.String("sink", sink.Name()),
				zap.String("event_key", event.Key),
				zap.Error(err))
			return fmt.Errorf("sink %s failed for %s: %w", sink.Name(), event.Key, err)
		}
	}
	return nil
}
