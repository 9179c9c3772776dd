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

package store

// NullStore discards everything written to it and answers every
// Retrieve with ErrNotFound. Useful for sessions that don't support
// resend (or tests that don't care about it) without special-casing
// the orchestrator's store calls. Mirrors message_store.hpp's
// NullStore exactly.
type NullStore struct{}

// NewNullStore returns a NullStore. A struct literal would work too;
// the constructor exists so callers construct every backend the same
// way.
func NewNullStore() *NullStore { return &NullStore{} }

func (NullStore) Store(seq uint32, raw []byte) error { return nil }

func (NullStore) Retrieve(seq uint32) ([]byte, error) { return nil, ErrNotFound }

func (NullStore) RetrieveRange(begin, end uint32) ([][]byte, error) { return nil, nil }

func (NullStore) Reset() error { return nil }

func (NullStore) Close() error { return nil }

func (NullStore) GetNextSenderSeqNum() (uint32, error) { return 0, nil }

func (NullStore) SetNextSenderSeqNum(seq uint32) error { return nil }

func (NullStore) GetNextTargetSeqNum() (uint32, error) { return 0, nil }

func (NullStore) SetNextTargetSeqNum(seq uint32) error { return nil }

var _ MessageStore = NullStore{}
