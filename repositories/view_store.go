package repositories

import (
	"chat-saga/domain"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// ViewStore keeps materialized rows under "view:{name}:{key}".
// Rows are opaque bytes, the projection layer owns their encoding.
type ViewStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewViewStore(db *badger.DB, log *slog.Logger) ViewStore {
	return ViewStore{db: db, log: log}
}

func viewKey(view, key string) []byte {
	return []byte(fmt.Sprintf("view:%s:%s", view, key))
}

func (s ViewStore) Get(view, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(viewKey(view, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s ViewStore) Put(view, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(viewKey(view, key), value)
	})
}

func (s ViewStore) Delete(view, key string) error {
	s.log.Debug("Dropping view row", "view", view, "key", key)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(viewKey(view, key))
	})
}

// Scan visits, in key order, every row of view whose key starts with prefix.
// The visited value is only valid during the call.
func (s ViewStore) Scan(view, prefix string, visit func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		full := viewKey(view, prefix)
		skip := len(viewKey(view, ""))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(full); it.ValidForPrefix(full); it.Next() {
			item := it.Item()
			key := string(item.Key()[skip:])
			err := item.Value(func(value []byte) error {
				return visit(key, value)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ProcessStore keeps the state of every saga instance under "proc:{kind}:{key}".
type ProcessStore struct {
	db *badger.DB
}

func NewProcessStore(db *badger.DB) ProcessStore {
	return ProcessStore{db: db}
}

func processKey(target domain.Target) []byte {
	return []byte(fmt.Sprintf("proc:%s:%s", target.Kind, target.Key))
}

func (s ProcessStore) Get(target domain.Target) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(processKey(target))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s ProcessStore) Put(target domain.Target, state []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(processKey(target), state)
	})
}
