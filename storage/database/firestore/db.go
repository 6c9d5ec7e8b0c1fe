package firestoredb

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/trezcool/edusite/core"
)

// DB is a core.DocumentStore on Cloud Firestore.
type DB struct {
	client *firestore.Client
	logger core.Logger
}

var _ core.DocumentStore = (*DB)(nil)

func toDocument(collection string, snap *firestore.DocumentSnapshot) core.Document {
	return core.Document{
		ID:         snap.Ref.ID,
		Collection: collection,
		Data:       snap.Data(),
		CreatedAt:  snap.CreateTime,
		UpdatedAt:  snap.UpdateTime,
	}
}

// toFirestore swaps core sentinels for their Firestore counterparts.
func toFirestore(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case map[string]interface{}:
			out[k] = toFirestore(val)
		default:
			if v == core.ServerTimestamp {
				out[k] = firestore.ServerTimestamp
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func (db *DB) Get(ctx context.Context, collection, id string) (core.Document, error) {
	snap, err := db.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return core.Document{}, core.ErrDocNotFound
		}
		return core.Document{}, errors.Wrapf(err, "getting %s/%s", collection, id)
	}
	return toDocument(collection, snap), nil
}

func (db *DB) Query(ctx context.Context, q core.Query) ([]core.Document, error) {
	query := db.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	for _, ord := range q.Orderings {
		dir := firestore.Desc
		if ord.Ascending {
			dir = firestore.Asc
		}
		query = query.OrderBy(ord.Field, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	docs := make([]core.Document, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "querying %s", q.Collection)
		}
		docs = append(docs, toDocument(q.Collection, snap))
	}
	return docs, nil
}

func (db *DB) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	ref, _, err := db.client.Collection(collection).Add(ctx, toFirestore(data))
	if err != nil {
		return "", errors.Wrapf(err, "adding to %s", collection)
	}
	return ref.ID, nil
}

func (db *DB) Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := db.client.Collection(collection).Doc(id).Set(ctx, toFirestore(data), opts...)
	return errors.Wrapf(err, "setting %s/%s", collection, id)
}

type subscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

func (db *DB) Watch(ctx context.Context, collection, id string, fn core.WatchFunc) (core.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := db.client.Collection(collection).Doc(id).Snapshots(ctx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if err == iterator.Done || status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				db.logger.Error(fmt.Sprintf("watching %s/%s: %v", collection, id, err), err)
				return
			}
			if !snap.Exists() {
				fn(core.Document{ID: id, Collection: collection}, false)
				continue
			}
			fn(toDocument(collection, snap), true)
		}
	}()
	return &subscription{cancel: cancel}, nil
}

func (db *DB) Close() error {
	return db.client.Close()
}
