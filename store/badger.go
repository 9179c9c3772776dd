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
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists messages in an embedded LSM-tree database keyed
// by the big-endian encoding of the sequence number, so badger's
// native key ordering matches sequence order for range scans. Unlike
// MemoryStore, entries survive process restart - the durable backend
// the spec's "Persisted state must preserve exact bytes across
// restart" requirement calls for.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a badger database at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func seqKey(seq uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, seq)
	return k
}

// Message keys are exactly 4 raw bytes (the big-endian sequence
// number); the two sequence-counter metadata keys below are longer
// ASCII strings specifically so they never collide with a message key
// or get swept up by RetrieveRange's range scan.
var (
	metaKeyNextSenderSeqNum = []byte("meta:next_sender_seq_num")
	metaKeyNextTargetSeqNum = []byte("meta:next_target_seq_num")
)

func (s *BadgerStore) Store(seq uint32, raw []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(seqKey(seq), raw)
	})
}

func (s *BadgerStore) Retrieve(seq uint32) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(seqKey(seq))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = make([]byte, len(val))
			copy(out, val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) RetrieveRange(begin, end uint32) ([][]byte, error) {
	var out [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seqKey(begin)); it.Valid(); it.Next() {
			item := it.Item()
			if len(item.Key()) != 4 {
				continue
			}
			seq := binary.BigEndian.Uint32(item.Key())
			if end != 0 && seq > end {
				break
			}
			err := item.Value(func(val []byte) error {
				cp := make([]byte, len(val))
				copy(cp, val)
				out = append(out, cp)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) Reset() error {
	return s.db.DropAll()
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) getMetaSeq(key []byte) (uint32, error) {
	var out uint32
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 4 {
				out = binary.BigEndian.Uint32(val)
			}
			return nil
		})
	})
	return out, err
}

func (s *BadgerStore) setMetaSeq(key []byte, seq uint32) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, seqKey(seq))
	})
}

func (s *BadgerStore) GetNextSenderSeqNum() (uint32, error) {
	return s.getMetaSeq(metaKeyNextSenderSeqNum)
}

func (s *BadgerStore) SetNextSenderSeqNum(seq uint32) error {
	return s.setMetaSeq(metaKeyNextSenderSeqNum, seq)
}

func (s *BadgerStore) GetNextTargetSeqNum() (uint32, error) {
	return s.getMetaSeq(metaKeyNextTargetSeqNum)
}

func (s *BadgerStore) SetNextTargetSeqNum(seq uint32) error {
	return s.setMetaSeq(metaKeyNextTargetSeqNum, seq)
}

var _ MessageStore = (*BadgerStore)(nil)
