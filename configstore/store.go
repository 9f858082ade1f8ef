/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package configstore implements the Config Readers component: the
// embedded key/value entity store and the file- and datastore-backed
// loaders for TriggerConfigurations and Rules.
//
// EmbeddedStore is grounded on the original's toolkit::db::sled::SledStore,
// with go.etcd.io/bbolt standing in for sled as the embedded store engine.
// It deliberately preserves the original's SHA-1-of-serialization identity
// scheme for inserted entities (see the Design Notes open question on
// embedded-store identity): callers cannot update an entity in place, only
// re-derive its address by re-inserting it.
package configstore

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/bittoy/automaton/errs"
)

// EmbeddedStore is a handle to a bbolt database holding one bucket per
// entity kind ("trigger_configuration", "rule", ...).
type EmbeddedStore struct {
	db *bbolt.DB
}

// OpenEmbeddedStore opens (creating if absent) a bbolt database at path.
func OpenEmbeddedStore(path string) (*EmbeddedStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open embedded store %s: %v", errs.ErrFatalLoader, path, err)
	}
	return &EmbeddedStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *EmbeddedStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close embedded store: %v", errs.ErrTransient, err)
	}
	return nil
}

// Entity returns a typed view over the bucket named kind, lazily creating
// the bucket on first write.
func Entity[T any](s *EmbeddedStore, kind string) *EntityStore[T] {
	return &EntityStore[T]{store: s, kind: kind}
}

// EntityStore is a typed view over one bucket of an EmbeddedStore.
type EntityStore[T any] struct {
	store *EmbeddedStore
	kind  string
}

// Insert serializes entity to JSON, addresses it by the hex SHA-1 of that
// serialization, and stores it under that id. Reinserting byte-identical
// content is a no-op that returns the same id; reinserting logically-updated
// content mints a new id rather than overwriting the old one — there is no
// update operation by design.
func (e *EntityStore[T]) Insert(entity T) (id string, err error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return "", fmt.Errorf("%w: serialize %s entity: %v", errs.ErrTransient, e.kind, err)
	}
	sum := sha1.Sum(data)
	id = hex.EncodeToString(sum[:])

	err = e.store.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(e.kind))
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return "", fmt.Errorf("%w: insert %s entity: %v", errs.ErrTransient, e.kind, err)
	}
	return id, nil
}

// Get fetches the entity addressed by id, if present.
func (e *EntityStore[T]) Get(id string) (entity T, found bool, err error) {
	err = e.store.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(e.kind))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &entity)
	})
	if err != nil {
		return entity, false, fmt.Errorf("%w: get %s entity %s: %v", errs.ErrTransient, e.kind, id, err)
	}
	return entity, found, nil
}

// ListAll returns every entity currently stored under this kind.
func (e *EntityStore[T]) ListAll() ([]T, error) {
	var out []T
	err := e.store.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(e.kind))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var entity T
			if err := json.Unmarshal(v, &entity); err != nil {
				return err
			}
			out = append(out, entity)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s entities: %v", errs.ErrTransient, e.kind, err)
	}
	return out, nil
}
