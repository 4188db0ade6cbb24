/*
Package container implements a single-file store of named top-level records.

A DB holds records in memory and mirrors them to one backing file:

	<level><name>;<path>;<size>;\n
	<marker><title>:<length>\n<content>\n
	...

Export always rewrites the whole file. Load, LoadN, LoadAll and Find read
records back, Update and UpdateAll patch uncompressed files in place.

DB is meant to be used by a single writer. Update, UpdateAll and Export
assume exclusive ownership of the file and must not run concurrently with
each other or with writers of other processes.
*/
package container

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
	"github.com/nspcc-dev/recstore/pkg/util"
	"go.uber.org/zap"
)

var (
	// ErrRecordNotFound is returned when requested record is neither in
	// memory nor in the file.
	ErrRecordNotFound = errors.New("record not found")

	// ErrMissingFile is returned when backing file does not exist.
	ErrMissingFile = errors.New("store file is missing")
)

// DB is a named collection of top-level records backed by a single file.
type DB struct {
	cfg

	name string
	path string

	pool  util.WorkerPool
	spans *lru.Cache[string, codec.SubHeader]

	mtx     sync.RWMutex
	hdr     *codec.Header
	records map[string]entity.Record
	order   []string
}

// New creates DB named name with records stored in file at path.
func New(name, path string, opts ...Option) (*DB, error) {
	if err := codec.CheckHeaderField(name); err != nil {
		return nil, fmt.Errorf("invalid store name: %w", err)
	}
	if err := codec.CheckHeaderField(path); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	db := &DB{
		name:    name,
		path:    path,
		records: make(map[string]entity.Record),
	}
	initConfig(&db.cfg)

	for i := range opts {
		opts[i](&db.cfg)
	}

	if db.authoring == nil {
		db.authoring = entity.NewIndex()
	}
	if db.parse == nil {
		db.parse = entity.NewIndex()
	}

	db.log = db.log.With(zap.String("component", "record store"), zap.String("db", name))

	var err error

	db.pool, err = util.NewWorkerPool(db.workers)
	if err != nil {
		return nil, err
	}

	if db.spanCacheSize > 0 {
		db.spans, err = lru.New[string, codec.SubHeader](db.spanCacheSize)
		if err != nil {
			db.pool.Release()
			return nil, fmt.Errorf("could not create span cache: %w", err)
		}
	}

	return db, nil
}

// Name returns DB name.
func (db *DB) Name() string { return db.name }

// Path returns backing file path.
func (db *DB) Path() string { return db.path }

// Authoring returns registry values of this DB should be created in so that
// references between them can be serialized.
func (db *DB) Authoring() *entity.Index { return db.authoring }

// ParseIndex returns parse-scoped registry filled by loads.
func (db *DB) ParseIndex() *entity.Index { return db.parse }

// ResetParseIndex forgets all the names registered by previous loads. It
// must be called once a full load has completed, LoadAll does it itself.
func (db *DB) ResetParseIndex() {
	db.parse.Reset()
}

// Add puts record to the in-memory collection. A record with the same title
// is replaced keeping its position.
func (db *DB) Add(rec entity.Record) error {
	if err := entity.CheckTitle(rec.Title()); err != nil {
		return err
	}

	db.mtx.Lock()
	db.put(rec)
	db.mtx.Unlock()

	return nil
}

func (db *DB) put(rec entity.Record) {
	title := rec.Title()
	if _, ok := db.records[title]; !ok {
		db.order = append(db.order, title)
	}
	db.records[title] = rec
}

// Delete removes record from the in-memory collection. The file is not
// changed until the next Export.
func (db *DB) Delete(title string) bool {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	if _, ok := db.records[title]; !ok {
		return false
	}
	delete(db.records, title)
	for i := range db.order {
		if db.order[i] == title {
			db.order = append(db.order[:i], db.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns in-memory record by title.
func (db *DB) Get(title string) (entity.Record, bool) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	rec, ok := db.records[title]
	return rec, ok
}

// At returns i-th in-memory record in insertion order.
func (db *DB) At(i int) (entity.Record, bool) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	if i < 0 || i >= len(db.order) {
		return nil, false
	}
	return db.records[db.order[i]], true
}

// Titles returns titles of in-memory records in insertion order.
func (db *DB) Titles() []string {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	return append([]string(nil), db.order...)
}

// Len returns number of in-memory records.
func (db *DB) Len() int {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	return len(db.order)
}

func (db *DB) snapshot() []entity.Record {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	res := make([]entity.Record, len(db.order))
	for i := range db.order {
		res[i] = db.records[db.order[i]]
	}
	return res
}

// Header returns header of the backing file. It is read once and cached
// until an operation changes the file layout.
func (db *DB) Header() (codec.Header, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	return db.header()
}

// Reload drops cached header and reads it again.
func (db *DB) Reload() (codec.Header, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	db.hdr = nil
	return db.header()
}

func (db *DB) header() (codec.Header, error) {
	if db.hdr != nil {
		return *db.hdr, nil
	}

	size, err := db.backend.Size(db.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return codec.Header{}, fmt.Errorf("%w: %s", ErrMissingFile, db.path)
		}
		return codec.Header{}, fmt.Errorf("could not get store file size: %w", err)
	}

	f, err := db.backend.Open(db.path, storage.ModeRead)
	if err != nil {
		return codec.Header{}, fmt.Errorf("could not open store file: %w", err)
	}
	defer f.Close()

	h, err := codec.ReadHeader(io.NewSectionReader(f, 0, size), size)
	if err != nil {
		return codec.Header{}, err
	}

	db.hdr = &h
	db.metrics.SetFileSize(size)

	return h, nil
}

// invalidate drops cached header and spans after a layout change.
func (db *DB) invalidate() {
	db.mtx.Lock()
	db.hdr = nil
	db.mtx.Unlock()

	if db.spans != nil {
		db.spans.Purge()
	}
}

func (db *DB) decoder(maintainBorrows bool) *codec.Decoder {
	return &codec.Decoder{
		Authoring:       db.authoring,
		Parse:           db.parse,
		MaintainBorrows: maintainBorrows,
		BlobCodec:       db.blobCodec,
	}
}

// Close releases DB resources. In-memory records stay accessible.
func (db *DB) Close() error {
	db.pool.Release()
	if db.spans != nil {
		db.spans.Purge()
	}
	return nil
}
