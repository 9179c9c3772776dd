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

package main

import (
	"strings"
	"testing"

	"github.com/SilverstreamsAI/NexusFix/constants"
)

func TestParseOrderCommand_LimitBuy(t *testing.T) {
	params, side, err := parseOrderCommand(strings.Fields("order buy BTC-USD 0.01 50000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if side != "buy" {
		t.Fatalf("expected side buy, got %s", side)
	}
	if params.Symbol != "BTC-USD" || params.Side != constants.SideBuy {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params.OrdType != constants.OrdTypeLimit || params.Price != "50000" {
		t.Fatalf("expected a limit order at 50000, got type=%s price=%s", params.OrdType, params.Price)
	}
	if params.ClOrdID == "" {
		t.Fatal("expected a generated ClOrdID")
	}
}

func TestParseOrderCommand_MarketSellDropsPrice(t *testing.T) {
	params, side, err := parseOrderCommand(strings.Fields("order sell ETH-USD 1.5 --type market"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if side != "sell" || params.Side != constants.SideSell {
		t.Fatalf("expected sell side, got %s / %s", side, params.Side)
	}
	if params.OrdType != constants.OrdTypeMarket {
		t.Fatalf("expected market order, got %s", params.OrdType)
	}
	if params.Price != "" {
		t.Fatalf("expected no price on a market order, got %s", params.Price)
	}
}

func TestParseOrderCommand_LimitWithoutPriceIsRejected(t *testing.T) {
	_, _, err := parseOrderCommand(strings.Fields("order buy BTC-USD 0.01"))
	if err == nil {
		t.Fatal("expected an error for a limit order with no price")
	}
}

func TestParseOrderCommand_InvalidSideIsRejected(t *testing.T) {
	_, _, err := parseOrderCommand(strings.Fields("order hold BTC-USD 0.01 50000"))
	if err == nil {
		t.Fatal("expected an error for an invalid side")
	}
}

func TestParseOrderCommand_TimeInForceFlag(t *testing.T) {
	params, _, err := parseOrderCommand(strings.Fields("order buy BTC-USD 0.01 50000 --tif ioc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.TimeInForce != constants.TimeInForceIOC {
		t.Fatalf("expected IOC, got %s", params.TimeInForce)
	}
}

func TestLoadConfig_DefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9878" {
		t.Fatalf("expected default addr, got %s", cfg.Addr)
	}
	if cfg.Store != "memory" {
		t.Fatalf("expected default store memory, got %s", cfg.Store)
	}
	if cfg.HeartBtInt != 30 {
		t.Fatalf("expected default HeartBtInt 30, got %d", cfg.HeartBtInt)
	}
	if cfg.logonTimeout().Milliseconds() != 10_000 {
		t.Fatalf("expected default logon timeout 10s, got %s", cfg.logonTimeout())
	}
}
