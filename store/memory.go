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

import (
	"sync"

	"github.com/tidwall/btree"
)

// MemoryStore keeps every stored message in a btree.Map ordered by
// sequence number, guarded by an RWMutex with defensive copies on
// read - the same locking and copy-out discipline
// prime-fix-md-go/fixclient/tradestore.go uses for its ring buffer,
// applied here to an ordered map instead of a fixed-size ring since
// resend ranges need arbitrary-offset retrieval rather than
// most-recent-N access.
//
// maxEntries caps memory growth the way tradestore.go's maxSize caps
// its ring buffer; once the cap is reached the oldest entry is evicted.
// A session that needs unbounded resend history should use BadgerStore
// instead.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    btree.Map[uint32, []byte]
	maxEntries int

	nextSenderSeq uint32
	nextTargetSeq uint32
}

// NewMemoryStore returns a MemoryStore capped at maxEntries. A
// maxEntries of 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{maxEntries: maxEntries}
}

func (s *MemoryStore) Store(seq uint32, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(raw))
	copy(cp, raw)
	s.entries.Set(seq, cp)

	if s.maxEntries > 0 && s.entries.Len() > s.maxEntries {
		oldestKey, _, ok := s.entries.Min()
		if ok {
			s.entries.Delete(oldestKey)
		}
	}
	return nil
}

func (s *MemoryStore) Retrieve(seq uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries.Get(seq)
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *MemoryStore) RetrieveRange(begin, end uint32) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]byte, 0)
	s.entries.Scan(func(seq uint32, raw []byte) bool {
		if seq < begin {
			return true
		}
		if end != 0 && seq > end {
			return false
		}
		cp := make([]byte, len(raw))
		copy(cp, raw)
		out = append(out, cp)
		return true
	})
	return out, nil
}

func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = btree.Map[uint32, []byte]{}
	s.nextSenderSeq = 0
	s.nextTargetSeq = 0
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetNextSenderSeqNum() (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSenderSeq, nil
}

func (s *MemoryStore) SetNextSenderSeqNum(seq uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSenderSeq = seq
	return nil
}

func (s *MemoryStore) GetNextTargetSeqNum() (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextTargetSeq, nil
}

func (s *MemoryStore) SetNextTargetSeqNum(seq uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTargetSeq = seq
	return nil
}

var _ MessageStore = (*MemoryStore)(nil)
