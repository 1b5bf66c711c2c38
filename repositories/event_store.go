package repositories

import (
	"chat-saga/domain"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const sequenceBandwidth = 100

type IEventStore interface {
	Append(stream domain.Target, expected, cause uint64, evt event.Event) (event.Record, error)
	Load(stream domain.Target) ([]event.Record, error)
	Version(stream domain.Target) (uint64, error)
	ReadAll(after uint64, limit int) ([]event.Record, error)
	OnAppend(observer func(event.Record))
}

// EventStore is the append-only log of every entity and process.
// Keys:
//
//	log:{position}              the record, positions are zero padded to sort
//	evt:{kind}:{key}:{seq}      position of the seq-th event of a stream
//	head:{kind}:{key}           current version of a stream
//
// Appends are serialized: positions are committed and observed in increasing
// order, the same order ReadAll returns them.
type EventStore struct {
	mu        sync.Mutex
	db        *badger.DB
	sequence  *badger.Sequence
	observers []func(event.Record)
	log       *slog.Logger
}

func NewEventStore(db *badger.DB, log *slog.Logger) (*EventStore, error) {
	sequence, err := db.GetSequence([]byte("seq:log"), sequenceBandwidth)
	if err != nil {
		return nil, err
	}
	return &EventStore{db: db, sequence: sequence, log: log}, nil
}

// Close hands the leased positions back to badger.
func (s *EventStore) Close() error {
	return s.sequence.Release()
}

func logKey(position uint64) []byte {
	return []byte(fmt.Sprintf("log:%020d", position))
}

func streamPrefix(stream domain.Target) []byte {
	return []byte(fmt.Sprintf("evt:%s:%s:", stream.Kind, stream.Key))
}

func streamKey(stream domain.Target, seq uint64) []byte {
	return append(streamPrefix(stream), []byte(fmt.Sprintf("%020d", seq))...)
}

func headKey(stream domain.Target) []byte {
	return []byte(fmt.Sprintf("head:%s:%s", stream.Kind, stream.Key))
}

// OnAppend registers observer to receive every committed record, in position
// order. observer runs under the append lock and must not block.
func (s *EventStore) OnAppend(observer func(event.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Append stores evt as the next event of stream. It fails with ErrVersionConflict
// when the stream is not at the expected version.
func (s *EventStore) Append(stream domain.Target, expected, cause uint64, evt event.Event) (event.Record, error) {
	payload, err := event.Encode(evt)
	if err != nil {
		return event.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.sequence.Next()
	if err != nil {
		return event.Record{}, err
	}
	record := event.Record{
		Position: next + 1,
		Stream:   stream,
		Seq:      expected + 1,
		Cause:    cause,
		Type:     evt.Type(),
		Payload:  payload,
		Event:    evt,
	}
	bytes, err := json.Marshal(record)
	if err != nil {
		return event.Record{}, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := readHead(txn, stream)
		if err != nil {
			return err
		}
		if current != expected {
			return fmt.Errorf("%w: %s is at %d, expected %d", errors.ErrVersionConflict, stream, current, expected)
		}
		if err := txn.Set(logKey(record.Position), bytes); err != nil {
			return err
		}
		if err := txn.Set(streamKey(stream, record.Seq), encodeUint(record.Position)); err != nil {
			return err
		}
		return txn.Set(headKey(stream), encodeUint(record.Seq))
	})
	if err != nil {
		return event.Record{}, err
	}
	s.log.Debug("Event appended", "stream", stream.String(), "type", record.Type, "position", record.Position)
	for _, observer := range s.observers {
		observer(record)
	}
	return record, nil
}

// Version returns the number of events of stream.
func (s *EventStore) Version(stream domain.Target) (uint64, error) {
	var version uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		version, err = readHead(txn, stream)
		return err
	})
	return version, err
}

// Load returns the events of stream in append order.
func (s *EventStore) Load(stream domain.Target) ([]event.Record, error) {
	var records []event.Record
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := streamPrefix(stream)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var position uint64
			err := it.Item().Value(func(value []byte) error {
				position = binary.BigEndian.Uint64(value)
				return nil
			})
			if err != nil {
				return err
			}
			record, err := readRecord(txn, position)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// ReadAll returns up to limit records appended after the given position.
func (s *EventStore) ReadAll(after uint64, limit int) ([]event.Record, error) {
	return readLog(s.db, after, limit)
}

// LogReader reads the log of a database opened read-only, where no sequence
// can be leased.
type LogReader struct {
	db *badger.DB
}

func NewLogReader(db *badger.DB) LogReader {
	return LogReader{db: db}
}

func (r LogReader) ReadAll(after uint64, limit int) ([]event.Record, error) {
	return readLog(r.db, after, limit)
}

func readLog(db *badger.DB, after uint64, limit int) ([]event.Record, error) {
	var records []event.Record
	err := db.View(func(txn *badger.Txn) error {
		prefix := []byte("log:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(logKey(after + 1)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				break
			}
			var record event.Record
			err := it.Item().Value(func(value []byte) error {
				var err error
				record, err = DecodeRecord(value)
				return err
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

func readHead(txn *badger.Txn, stream domain.Target) (uint64, error) {
	item, err := txn.Get(headKey(stream))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var version uint64
	err = item.Value(func(value []byte) error {
		version = binary.BigEndian.Uint64(value)
		return nil
	})
	return version, err
}

func readRecord(txn *badger.Txn, position uint64) (event.Record, error) {
	item, err := txn.Get(logKey(position))
	if err != nil {
		return event.Record{}, fmt.Errorf("reading position %d: %w", position, err)
	}
	var record event.Record
	err = item.Value(func(value []byte) error {
		record, err = DecodeRecord(value)
		return err
	})
	return record, err
}

// DecodeRecord parses a stored log value and its event payload.
func DecodeRecord(value []byte) (event.Record, error) {
	var record event.Record
	if err := json.Unmarshal(value, &record); err != nil {
		return event.Record{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	evt, err := event.Decode(record.Type, record.Payload)
	if err != nil {
		return event.Record{}, err
	}
	record.Event = evt
	return record, nil
}

func encodeUint(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
