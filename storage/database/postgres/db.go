package pgdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/storage/database"
)

const (
	notifyChannel = "document_changes"
	timeLayout    = "2006-01-02T15:04:05.000000Z" // fixed width, so that text order is time order
	pingInterval  = 90 * time.Second
)

type row struct {
	ID        string         `db:"id"`
	Data      types.JSONText `db:"data"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// DB is a core.DocumentStore on a postgres JSONB table. Changes are observed through LISTEN/NOTIFY.
type DB struct {
	db       *sqlx.DB
	listener *pq.Listener
	watchers *database.Watchers
	logger   core.Logger
	done     chan struct{}

	NowFunc func() time.Time // mockable
}

var _ core.DocumentStore = (*DB)(nil)

// NewDB wraps db, which is closed along with the store. connURL is used to open the dedicated LISTEN connection.
func NewDB(db *sqlx.DB, connURL string, logger core.Logger) (*DB, error) {
	store := &DB{
		db:       db,
		watchers: database.NewWatchers(),
		logger:   logger,
		done:     make(chan struct{}),
		NowFunc:  func() time.Time { return time.Now().UTC() },
	}

	store.listener = pq.NewListener(connURL, 100*time.Millisecond, time.Minute, store.onListenerEvent)
	if err := store.listener.Listen(notifyChannel); err != nil {
		_ = store.listener.Close()
		return nil, errors.Wrap(err, "listening to "+notifyChannel)
	}
	go store.forward()
	return store, nil
}

func (store *DB) onListenerEvent(ev pq.ListenerEventType, err error) {
	if err != nil {
		store.logger.Warn(fmt.Sprintf("document listener event %d: %v", ev, err), err)
	}
}

// forward turns NOTIFY payloads into watcher signals.
func (store *DB) forward() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-store.done:
			return
		case n := <-store.listener.Notify:
			if n == nil { // connection re-established; changes may have been missed
				continue
			}
			var payload struct {
				Collection string `json:"collection"`
				ID         string `json:"id"`
			}
			if err := json.Unmarshal([]byte(n.Extra), &payload); err != nil {
				store.logger.Error(fmt.Sprintf("decoding notification %q: %v", n.Extra, err), err)
				continue
			}
			store.watchers.Notify(payload.Collection, payload.ID)
		case <-ping.C:
			go func() { _ = store.listener.Ping() }()
		}
	}
}

func (store *DB) toDocument(collection string, r row) (core.Document, error) {
	data := make(map[string]interface{})
	if err := r.Data.Unmarshal(&data); err != nil {
		return core.Document{}, errors.Wrap(err, "decoding data of "+r.ID)
	}
	return core.Document{
		ID:         r.ID,
		Collection: collection,
		Data:       data,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func (store *DB) Get(ctx context.Context, collection, id string) (core.Document, error) {
	var r row
	err := store.db.GetContext(ctx, &r,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Document{}, core.ErrDocNotFound
		}
		return core.Document{}, errors.Wrap(err, "selecting document")
	}
	return store.toDocument(collection, r)
}

func (store *DB) Query(ctx context.Context, q core.Query) ([]core.Document, error) {
	query, args, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	var rows []row
	if err = store.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	docs := make([]core.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := store.toDocument(q.Collection, r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (store *DB) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	raw, err := encode(data, store.NowFunc())
	if err != nil {
		return "", err
	}
	_, err = store.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, raw)
	if err != nil {
		return "", errors.Wrap(err, "inserting document")
	}
	return id, nil
}

func (store *DB) Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	if !merge {
		raw, err := encode(data, store.NowFunc())
		if err != nil {
			return err
		}
		return errors.Wrap(upsert(ctx, store.db, collection, id, raw), "replacing document")
	}

	tx, err := store.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	current := make(map[string]interface{})
	var existing types.JSONText
	err = tx.GetContext(ctx, &existing,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`, collection, id)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return errors.Wrap(err, "locking document")
	default:
		if err = existing.Unmarshal(&current); err != nil {
			return errors.Wrap(err, "decoding document")
		}
	}

	resolved, err := normalize(core.ResolveServerTimestamps(data, store.NowFunc()))
	if err != nil {
		return err
	}
	raw, err := json.Marshal(core.MergeData(current, resolved))
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	if err = upsert(ctx, tx, collection, id, raw); err != nil {
		return errors.Wrap(err, "merging document")
	}
	return errors.Wrap(tx.Commit(), "committing merge")
}

func upsert(ctx context.Context, exec sqlx.ExecerContext, collection, id string, raw []byte) error {
	_, err := exec.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, raw)
	return err
}

func (store *DB) Watch(ctx context.Context, collection, id string, fn core.WatchFunc) (core.Subscription, error) {
	load := func(ctx context.Context) (core.Document, bool, error) {
		doc, err := store.Get(ctx, collection, id)
		if err == core.ErrDocNotFound {
			return core.Document{ID: id, Collection: collection}, false, nil
		}
		return doc, err == nil, err
	}
	onErr := func(err error) {
		store.logger.Error(fmt.Sprintf("watching %s/%s: %v", collection, id, err), err)
	}
	return store.watchers.Add(ctx, collection, id, load, fn, onErr), nil
}

// Close stops the listener and closes the wrapped database.
func (store *DB) Close() error {
	close(store.done)
	store.watchers.CloseAll()
	if err := store.listener.Close(); err != nil {
		_ = store.db.Close()
		return errors.Wrap(err, "closing listener")
	}
	return store.db.Close()
}

func encode(data map[string]interface{}, now time.Time) ([]byte, error) {
	resolved, err := normalize(core.ResolveServerTimestamps(data, now))
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(resolved)
	return raw, errors.Wrap(err, "encoding document")
}

// normalize turns values into their JSON shape (timestamps as fixed-width UTC strings).
func normalize(data map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, errors.Wrap(err, k)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(timeLayout), nil
	case map[string]interface{}:
		return normalize(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			nv, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	}
	return v, nil
}

// buildQuery renders q as SQL. Equality filters become one JSONB containment test; ordering
// fields must be present, like in the hosted store.
func buildQuery(q core.Query) (string, []interface{}, error) {
	var sb strings.Builder
	args := []interface{}{q.Collection}
	sb.WriteString(`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1`)

	if len(q.Filters) > 0 {
		contains := make(map[string]interface{})
		for _, f := range q.Filters {
			v, err := normalizeValue(f.Value)
			if err != nil {
				return "", nil, err
			}
			contains = core.MergeData(contains, core.Nest(f.Field, v))
		}
		raw, err := json.Marshal(contains)
		if err != nil {
			return "", nil, errors.Wrap(err, "encoding filters")
		}
		args = append(args, string(raw))
		fmt.Fprintf(&sb, ` AND data @> $%d::jsonb`, len(args))
	}

	orderBy := make([]string, 0, len(q.Orderings)+1)
	for _, ord := range q.Orderings {
		args = append(args, pq.Array(strings.Split(ord.Field, ".")))
		fmt.Fprintf(&sb, ` AND data #> $%d::text[] IS NOT NULL`, len(args))
		direction := "DESC"
		if ord.Ascending {
			direction = "ASC"
		}
		orderBy = append(orderBy, fmt.Sprintf(`data #> $%d::text[] %s`, len(args), direction))
	}
	orderBy = append(orderBy, "id ASC")
	sb.WriteString(" ORDER BY " + strings.Join(orderBy, ", "))

	if q.Limit > 0 {
		fmt.Fprintf(&sb, ` LIMIT %d`, q.Limit)
	}
	return sb.String(), args, nil
}
