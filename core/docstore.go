package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Collections
const (
	CollCourses           = "courses"
	CollResources         = "resources"
	CollBlogPosts         = "blogPosts"
	CollExamRegistrations = "examRegistrations"
	CollExamResults       = "examResults"
	CollReviews           = "reviews"
	CollContacts          = "contacts"
	CollEnrollments       = "enrollments"
	CollLearningModules   = "learningModules"
	CollChapters          = "chapters"
	CollLessons           = "lessons"
	CollSiteSettings      = "siteSettings"
	CollUserProgress      = "userProgress"
)

type serverTimestamp struct{}

// ServerTimestamp is a sentinel value replaced by the store's clock at write time.
var ServerTimestamp = serverTimestamp{}

type (
	// DocumentStore is a hosted document database holding JSON-like records in named collections.
	// Collection names may be nested paths, see CollectionPath.
	DocumentStore interface {
		// Get returns ErrDocNotFound if the document does not exist.
		Get(ctx context.Context, collection, id string) (Document, error)
		Query(ctx context.Context, q Query) ([]Document, error)
		// Add appends a new document with a generated ID.
		Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
		// Set replaces the document, or merges data into it (creating it if needed) when merge is true.
		Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error
		// Watch calls fn with the current state of the document and again after every change,
		// until the Subscription is cancelled or ctx is done.
		Watch(ctx context.Context, collection, id string, fn WatchFunc) (Subscription, error)
		Close() error
	}

	// WatchFunc receives the document and whether it exists.
	WatchFunc func(doc Document, exists bool)

	Subscription interface {
		Unsubscribe()
	}

	Document struct {
		ID         string
		Collection string
		Data       map[string]interface{}
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// Filter is an equality filter. Field may be a dotted path.
	Filter struct {
		Field string
		Value interface{}
	}

	Query struct {
		Collection string
		Filters    []Filter
		Orderings  []Ordering
		Limit      int
	}

	Ordering struct {
		Field     string
		Ascending bool
	}
)

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CollectionPath joins nested collection segments: CollectionPath("a", "id", "b") == "a/id/b".
func CollectionPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// DataTo decodes the document into v, using json tags. The document ID is exposed as "id".
func (d Document) DataTo(v interface{}) error {
	data := make(map[string]interface{}, len(d.Data)+1)
	for k, val := range d.Data {
		data[k] = val
	}
	if _, ok := data["id"]; !ok {
		data["id"] = d.ID
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshalling document "+d.ID)
	}
	return errors.Wrap(json.Unmarshal(raw, v), "decoding document "+d.ID)
}

// ResolveServerTimestamps returns a copy of data with every ServerTimestamp replaced by now.
func ResolveServerTimestamps(data map[string]interface{}, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case serverTimestamp:
			out[k] = now
		case map[string]interface{}:
			out[k] = ResolveServerTimestamps(val, now)
		default:
			out[k] = v
		}
	}
	return out
}

// MergeData deep-merges src into dst: nested maps are merged key by key, anything else is replaced.
func MergeData(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			dst[k] = MergeData(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[k] = MergeData(nil, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// Lookup returns the value at a dotted path.
func Lookup(data map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Nest builds a nested map from a dotted path: Nest("a.b", 1) == {"a": {"b": 1}}.
func Nest(path string, value interface{}) map[string]interface{} {
	parts := strings.Split(path, ".")
	out := map[string]interface{}{parts[len(parts)-1]: value}
	for i := len(parts) - 2; i >= 0; i-- {
		out = map[string]interface{}{parts[i]: out}
	}
	return out
}
