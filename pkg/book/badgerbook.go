package book

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/lavantien/caroengine/pkg/board"
)

// entry is the on-disk record for a single book hit, keyed by position
// hash plus side to move.
type entry struct {
	Move   string `json:"move"`
	Weight int    `json:"weight"`
	Source string `json:"source"`
}

// BadgerBook is a persistent opening book backed by BadgerDB, grounded
// on hailam-chessplay's storage package: same embedded-KV approach,
// generalized from preference/stat records to position-keyed book
// entries.
type BadgerBook struct {
	db *badger.DB
}

// OpenBadgerBook opens (creating if absent) a badger-backed book at
// dir.
func OpenBadgerBook(dir string) (*BadgerBook, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerBook{db: db}, nil
}

// Close closes the underlying database.
func (b *BadgerBook) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Probe implements Book.
func (b *BadgerBook) Probe(bd board.Board, side board.Player) (MoveWithMetadata, bool) {
	var result MoveWithMetadata
	found := false

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bookKey(bd.Hash(), side))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e entry
			if jerr := json.Unmarshal(val, &e); jerr != nil {
				return jerr
			}
			pos, perr := board.ParsePosition(e.Move)
			if perr != nil {
				return perr
			}
			result = MoveWithMetadata{Move: pos, Weight: e.Weight, Source: e.Source}
			found = true
			return nil
		})
	})
	if err != nil {
		return MoveWithMetadata{}, false
	}
	return result, found
}

// Put stores or overwrites the recommended move for (hash, side). Used
// by tooling that builds a book offline; the search core only reads.
func (b *BadgerBook) Put(hash board.Hash, side board.Player, move MoveWithMetadata) error {
	e := entry{Move: move.Move.String(), Weight: move.Weight, Source: move.Source}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bookKey(hash, side), payload)
	})
}

func bookKey(hash board.Hash, side board.Player) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf, uint64(hash))
	buf[8] = byte(side)
	return []byte(fmt.Sprintf("book:%x", buf))
}
