// Package persist is the persistence gateway: filtered CRUD over one
// MongoDB collection decoded into a typed entity.
//
// Every write returns the affected document (insert-returning,
// update-returning, delete-returning) so callers never need a follow-up
// read. Stores in internal/app/store wrap a Collection per entity and add
// the access paths their callers need.
//
// Operations take a context; passing a mongo.SessionContext makes them
// part of that session's transaction.
package persist

import (
	"context"
	"errors"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound is returned when a filter matches no document.
	ErrNotFound = errors.New("persist: document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("persist: duplicate key")
)

// Collection is a typed view of one MongoDB collection.
type Collection[T any] struct {
	c *mongo.Collection
}

// New returns a Collection for db.name decoded into T.
func New[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{c: db.Collection(name)}
}

// Raw exposes the driver collection for aggregations and index work.
func (c *Collection[T]) Raw() *mongo.Collection { return c.c }

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.c.Name() }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case wafflemongo.IsDup(err):
		return ErrDuplicate
	}
	return err
}

// Insert writes doc and returns it. Callers assign the _id beforehand.
func (c *Collection[T]) Insert(ctx context.Context, doc T) (T, error) {
	if _, err := c.c.InsertOne(ctx, doc); err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return doc, nil
}

// InsertMany writes docs in order. An empty slice is a no-op.
func (c *Collection[T]) InsertMany(ctx context.Context, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, d)
	}
	_, err := c.c.InsertMany(ctx, batch)
	return mapErr(err)
}

// FindOne returns the first document matching filter, or ErrNotFound.
func (c *Collection[T]) FindOne(ctx context.Context, filter any) (T, error) {
	var out T
	if err := c.c.FindOne(ctx, filter).Decode(&out); err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return out, nil
}

// Exists reports whether any document matches filter.
func (c *Collection[T]) Exists(ctx context.Context, filter any) (bool, error) {
	err := c.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindAll returns every document matching filter in sort order.
// A nil sort leaves the order to the server.
func (c *Collection[T]) FindAll(ctx context.Context, filter any, sort bson.D) ([]T, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	return c.find(ctx, filter, opts)
}

// Find returns one window of documents matching filter.
func (c *Collection[T]) Find(ctx context.Context, filter any, sort bson.D, p paging.Params) ([]T, error) {
	opts := options.Find().SetSkip(p.Skip).SetLimit(p.Limit)
	if sort != nil {
		opts.SetSort(sort)
	}
	return c.find(ctx, filter, opts)
}

func (c *Collection[T]) find(ctx context.Context, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := c.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of documents matching filter.
func (c *Collection[T]) Count(ctx context.Context, filter any) (int64, error) {
	return c.c.CountDocuments(ctx, filter)
}

// FindPage runs the window query and the total count concurrently.
// Do not call it with a transaction session context: a session does not
// allow concurrent operations.
func (c *Collection[T]) FindPage(ctx context.Context, filter any, sort bson.D, p paging.Params) (paging.Envelope[T], error) {
	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = c.Find(gctx, filter, sort, p)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = c.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return paging.Envelope[T]{}, err
	}
	return paging.Wrap(items, total, p), nil
}

// Update applies update to the first document matching filter and returns
// the document after the change, or ErrNotFound.
func (c *Collection[T]) Update(ctx context.Context, filter, update any) (T, error) {
	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := c.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return out, nil
}

// Set is Update with a $set document.
func (c *Collection[T]) Set(ctx context.Context, filter any, fields bson.M) (T, error) {
	return c.Update(ctx, filter, bson.M{"$set": fields})
}

// Delete removes the first document matching filter and returns it, or
// ErrNotFound.
func (c *Collection[T]) Delete(ctx context.Context, filter any) (T, error) {
	var out T
	if err := c.c.FindOneAndDelete(ctx, filter).Decode(&out); err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return out, nil
}

// DeleteMany removes every document matching filter and returns the count.
func (c *Collection[T]) DeleteMany(ctx context.Context, filter any) (int64, error) {
	res, err := c.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
