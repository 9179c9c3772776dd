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
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/SilverstreamsAI/NexusFix/builder"
	"github.com/SilverstreamsAI/NexusFix/constants"
	"github.com/SilverstreamsAI/NexusFix/engine"
)

const version = "nexusfix-session 0.1"

// repl runs the interactive console against a running engine.Engine
// until the user types exit/quit or closes stdin. Command dispatch
// mirrors prime-fix-md-go/fixclient/repl.go's switch-on-first-word
// structure.
func repl(e *engine.Engine, h *replHandler, addr string) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("order",
			readline.PcItem("buy"),
			readline.PcItem("sell"),
		),
		readline.PcItem("status"),
		readline.PcItem("log"),
		readline.PcItem("testrequest"),
		readline.PcItem("logout"),
		readline.PcItem("help"),
		readline.PcItem("version"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "NexusFix> ",
		HistoryFile:     "/tmp/nexusfix_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("failed to start readline: %v\n", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "order":
			handleOrderCommand(e, parts)
		case "testrequest":
			handleTestRequestCommand(e)
		case "status":
			cfg := e.Config()
			displayStatus(e.State(), e.Stats(), addr, cfg.SenderCompID, cfg.TargetCompID)
		case "log":
			handleLogCommand(h, parts)
		case "logout":
			e.RequestShutdown()
			fmt.Println("logout requested, session will end after the peer responds or the timeout elapses")
		case "help":
			displayHelp()
		case "version":
			fmt.Println(version)
		case "exit", "quit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
}

func handleLogCommand(h *replHandler, parts []string) {
	n := 10
	if len(parts) >= 2 {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			n = v
		}
	}

	msgs := h.recentAppMessages(n)
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		msgType, _ := m.MsgType()
		seq, _ := m.MsgSeqNum()
		lines = append(lines, fmt.Sprintf("  seq=%d type=%s fields=%d", seq, msgType, m.FieldCount()))
	}
	displayAppLog(lines)
}

func handleTestRequestCommand(e *engine.Engine) {
	if err := e.SendTestRequest(); err != nil {
		fmt.Printf("failed to send test request: %v\n", err)
		return
	}
	fmt.Println("test request sent")
}

// handleOrderCommand parses "order <buy|sell> <symbol> <qty> [price]
// [--type market|limit] [--tif gtc|ioc|fok|gtd]" and sends a New Order
// Single. This client engine only tracks the order as far as the wire -
// order/position bookkeeping is out of scope for a session engine.
func handleOrderCommand(e *engine.Engine, parts []string) {
	params, sideWord, err := parseOrderCommand(parts)
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := e.SendNewOrderSingle(params); err != nil {
		fmt.Printf("failed to send order: %v\n", err)
		return
	}
	fmt.Printf("order sent: clOrdID=%s %s %s qty=%s price=%s\n",
		params.ClOrdID, sideWord, params.Symbol, params.OrderQty, params.Price)
}

// parseOrderCommand turns a tokenized "order ..." command line into
// NewOrderParams, including a freshly generated ClOrdID, and leaves
// dispatch to the caller so the parsing itself can be exercised without
// a running engine.
func parseOrderCommand(parts []string) (builder.NewOrderParams, string, error) {
	usage := `Usage: order <buy|sell> <symbol> <qty> [price] [--type market|limit] [--tif gtc|ioc|fok|gtd]
Examples:
  order buy BTC-USD 0.01 50000
  order sell ETH-USD 1.5 --type market`

	if len(parts) < 4 {
		return builder.NewOrderParams{}, "", fmt.Errorf("%s", usage)
	}

	side := constants.SideBuy
	sideWord := "buy"
	if strings.EqualFold(parts[1], "sell") {
		side = constants.SideSell
		sideWord = "sell"
	} else if !strings.EqualFold(parts[1], "buy") {
		return builder.NewOrderParams{}, "", fmt.Errorf("order side must be 'buy' or 'sell'")
	}

	symbol := strings.ToUpper(parts[2])
	qty := parts[3]

	ordType := constants.OrdTypeLimit
	tif := constants.TimeInForceGTC
	price := ""
	rest := parts[4:]

	if len(rest) > 0 && !strings.HasPrefix(rest[0], "--") {
		price = rest[0]
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--type":
			if i+1 < len(rest) {
				i++
				ordType = parseOrdType(rest[i])
			}
		case "--tif":
			if i+1 < len(rest) {
				i++
				tif = parseTimeInForce(rest[i])
			}
		}
	}

	if ordType == constants.OrdTypeMarket {
		price = ""
	} else if price == "" {
		return builder.NewOrderParams{}, "", fmt.Errorf("a limit order requires a price")
	}

	params := builder.NewOrderParams{
		ClOrdID:     builder.NewTestReqID(),
		Symbol:      symbol,
		Side:        side,
		OrdType:     ordType,
		TimeInForce: tif,
		OrderQty:    qty,
		Price:       price,
	}
	return params, sideWord, nil
}

func parseOrdType(s string) string {
	switch strings.ToLower(s) {
	case "market":
		return constants.OrdTypeMarket
	case "stop":
		return constants.OrdTypeStop
	case "stoplimit":
		return constants.OrdTypeStopLimit
	default:
		return constants.OrdTypeLimit
	}
}

func parseTimeInForce(s string) string {
	switch strings.ToLower(s) {
	case "ioc":
		return constants.TimeInForceIOC
	case "fok":
		return constants.TimeInForceFOK
	case "gtd":
		return constants.TimeInForceGTD
	case "day":
		return constants.TimeInForceDay
	default:
		return constants.TimeInForceGTC
	}
}
