// internal/app/system/cache/mongo.go
package cache

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the collection that backs the mongo cache.
const CollectionName = "cache_entries"

type entry struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// Mongo is the MongoDB-backed Cache. Expired documents are removed by the
// TTL monitor (roughly once a minute) and are filtered out of reads until
// then.
type Mongo struct {
	c   *mongo.Collection
	now func() time.Time
}

// NewMongo returns a cache over db.cache_entries and makes sure the TTL
// index exists.
func NewMongo(ctx context.Context, db *mongo.Database) (*Mongo, error) {
	m := &Mongo{c: db.Collection(CollectionName), now: time.Now}
	_, err := m.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("ttl_cache_expires_at").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mongo) live() bson.M {
	return bson.M{"$or": []bson.M{
		{"expires_at": bson.M{"$exists": false}},
		{"expires_at": bson.M{"$gt": m.now().UTC()}},
	}}
}

func (m *Mongo) Get(ctx context.Context, key string) (string, error) {
	var e entry
	err := m.c.FindOne(ctx, bson.M{"$and": []bson.M{{"_id": key}, m.live()}}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

func (m *Mongo) put(ctx context.Context, e entry) error {
	_, err := m.c.ReplaceOne(ctx, bson.M{"_id": e.Key}, e, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Set(ctx context.Context, key, value string) error {
	return m.put(ctx, entry{Key: key, Value: value})
}

func (m *Mongo) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	exp := m.now().UTC().Add(ttl)
	return m.put(ctx, entry{Key: key, Value: value, ExpiresAt: &exp})
}

func (m *Mongo) Keys(ctx context.Context, pattern string) ([]string, error) {
	filter := bson.M{"$and": []bson.M{
		{"_id": bson.M{"$regex": GlobToRegex(pattern)}},
		m.live(),
	}}
	cur, err := m.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var e struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		keys = append(keys, e.Key)
	}
	return keys, cur.Err()
}

func (m *Mongo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := m.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	return err
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.c.Database().Client().Ping(ctx, readpref.Primary())
}

// Close is a no-op: the client belongs to the caller.
func (m *Mongo) Close() error { return nil }

// GlobToRegex converts a Redis-style glob (*, ?, backslash escapes) into an
// anchored regular expression. Other characters match literally.
func GlobToRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
