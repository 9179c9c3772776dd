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

package engine

import (
	"context"
	"fmt"

	"github.com/SilverstreamsAI/NexusFix/builder"
	"github.com/SilverstreamsAI/NexusFix/session"
)

// SendNewOrderSingle sends a New Order Single outside the active
// phase's own send paths, for callers driving the engine interactively
// (e.g. cmd/fixsession's REPL). Valid only while the session is Active.
func (e *Engine) SendNewOrderSingle(params builder.NewOrderParams) error {
	if e.State() != session.Active {
		return fmt.Errorf("engine: cannot send while session is %s", e.State())
	}

	lock := e.sendMu.Lock()
	seqNum := e.seq.TakeOutbound()
	msg := builder.BuildNewOrderSingle(params, e.config.SenderCompID, e.config.TargetCompID, seqNum)
	err := e.sendRawLocked(context.Background(), seqNum, msg)
	lock.Unlock()
	return err
}

// SendTestRequest sends an ad hoc TestRequest outside the heartbeat
// loop's own scheduling, for an operator-triggered liveness check.
func (e *Engine) SendTestRequest() error {
	if e.State() != session.Active {
		return fmt.Errorf("engine: cannot send while session is %s", e.State())
	}
	return e.sendTestRequest(context.Background())
}
