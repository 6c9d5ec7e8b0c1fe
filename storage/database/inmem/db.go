package inmemdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/storage/database"
)

type record struct {
	data      map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
}

// DB is a core.DocumentStore kept in memory. It backs DEV mode and the tests.
type DB struct {
	mutex       sync.RWMutex
	collections map[string]map[string]*record // {collection: {id: record}}
	watchers    *database.Watchers

	NowFunc func() time.Time // mockable
}

var _ core.DocumentStore = (*DB)(nil)

func NewDB() *DB {
	return &DB{
		collections: make(map[string]map[string]*record),
		watchers:    database.NewWatchers(),
		NowFunc:     func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) toDocument(collection, id string, rec *record) core.Document {
	return core.Document{
		ID:         id,
		Collection: collection,
		Data:       copyMap(rec.data),
		CreatedAt:  rec.createdAt,
		UpdatedAt:  rec.updatedAt,
	}
}

func (db *DB) Get(_ context.Context, collection, id string) (core.Document, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if rec, ok := db.collections[collection][id]; ok {
		return db.toDocument(collection, id, rec), nil
	}
	return core.Document{}, core.ErrDocNotFound
}

func (db *DB) Query(_ context.Context, q core.Query) ([]core.Document, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	docs := make([]core.Document, 0)
	for id, rec := range db.collections[q.Collection] {
		if !matches(rec.data, q.Filters) {
			continue
		}
		// documents missing an ordering field are left out, like a hosted store would
		if !hasFields(rec.data, q.Orderings) {
			continue
		}
		docs = append(docs, db.toDocument(q.Collection, id, rec))
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, ord := range q.Orderings {
			a, _ := core.Lookup(docs[i].Data, ord.Field)
			b, _ := core.Lookup(docs[j].Data, ord.Field)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (db *DB) Add(_ context.Context, collection string, data map[string]interface{}) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	db.mutex.Lock()
	now := db.NowFunc()
	db.table(collection)[id] = &record{
		data:      copyMap(core.ResolveServerTimestamps(data, now)),
		createdAt: now,
		updatedAt: now,
	}
	db.mutex.Unlock()

	db.watchers.Notify(collection, id)
	return id, nil
}

func (db *DB) Set(_ context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	db.mutex.Lock()
	now := db.NowFunc()
	resolved := copyMap(core.ResolveServerTimestamps(data, now))
	table := db.table(collection)
	if rec, ok := table[id]; ok {
		if merge {
			rec.data = core.MergeData(rec.data, resolved)
		} else {
			rec.data = resolved
		}
		rec.updatedAt = now
	} else {
		table[id] = &record{data: resolved, createdAt: now, updatedAt: now}
	}
	db.mutex.Unlock()

	db.watchers.Notify(collection, id)
	return nil
}

func (db *DB) Watch(ctx context.Context, collection, id string, fn core.WatchFunc) (core.Subscription, error) {
	load := func(ctx context.Context) (core.Document, bool, error) {
		doc, err := db.Get(ctx, collection, id)
		if err == core.ErrDocNotFound {
			return core.Document{ID: id, Collection: collection}, false, nil
		}
		return doc, err == nil, err
	}
	return db.watchers.Add(ctx, collection, id, load, fn, nil), nil
}

// Subscriptions returns the number of live subscriptions.
func (db *DB) Subscriptions() int {
	return db.watchers.Len()
}

func (db *DB) Close() error {
	db.watchers.CloseAll()
	return nil
}

// Reset drops every collection.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.collections = make(map[string]map[string]*record)
}

func (db *DB) table(collection string) map[string]*record {
	table, ok := db.collections[collection]
	if !ok {
		table = make(map[string]*record)
		db.collections[collection] = table
	}
	return table
}

func matches(data map[string]interface{}, filters []core.Filter) bool {
	for _, f := range filters {
		v, ok := core.Lookup(data, f.Field)
		if !ok || compare(v, f.Value) != 0 || !sameKind(v, f.Value) {
			return false
		}
	}
	return true
}

func hasFields(data map[string]interface{}, orderings []core.Ordering) bool {
	for _, ord := range orderings {
		if _, ok := core.Lookup(data, ord.Field); !ok {
			return false
		}
	}
	return true
}
