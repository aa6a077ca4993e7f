// Package mongobackend implements backend.Backend on MongoDB.
package mongobackend

import (
	"context"
	"reflect"

	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	"github.com/dalemusser/rekaphub/internal/app/system/indexes"
	"github.com/dalemusser/rekaphub/internal/app/system/validators"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Backend struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

var _ backend.Backend = (*Backend)(nil)

// Open connects to uri, pings, and returns a Backend bound to dbName.
func Open(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Backend, error) {
	if err := wafflemongo.ValidateURI(uri); err != nil {
		return nil, backend.Fail("connect", "", "invalid mongo_uri", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, backend.Fail("connect", "", "mongo connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, backend.Fail("connect", "", "mongo ping", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", dbName))
	return &Backend{client: client, db: client.Database(dbName), log: logger}, nil
}

// New wraps an existing database handle. Close is a no-op for it.
func New(db *mongo.Database, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{db: db, log: logger}
}

// Database exposes the underlying handle for index management and tests.
func (b *Backend) Database() *mongo.Database { return b.db }

func (b *Backend) Find(ctx context.Context, q backend.Query, dst any) error {
	opts := options.Find()
	if s := sortDoc(q.Sort); len(s) > 0 {
		opts.SetSort(s)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cur, err := b.db.Collection(q.Table).Find(ctx, filterDoc(q.Filters), opts)
	if err != nil {
		return backend.Wrap("find", q.Table, err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, dst); err != nil {
		return backend.Fail("find", q.Table, "decode rows", err)
	}
	return nil
}

func (b *Backend) Count(ctx context.Context, q backend.Query) (int64, error) {
	n, err := b.db.Collection(q.Table).CountDocuments(ctx, filterDoc(q.Filters))
	if err != nil {
		return 0, backend.Wrap("count", q.Table, err)
	}
	return n, nil
}

func (b *Backend) Insert(ctx context.Context, table string, rows any) error {
	docs := flatten(rows)
	if len(docs) == 0 {
		return nil
	}
	coll := b.db.Collection(table)
	var err error
	if len(docs) == 1 {
		_, err = coll.InsertOne(ctx, docs[0])
	} else {
		// Ordered so a failure stops the batch; callers validate before inserting.
		_, err = coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	}
	return writeErr("insert", table, err)
}

func (b *Backend) Update(ctx context.Context, table, id string, set map[string]any) error {
	res, err := b.db.Collection(table).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return writeErr("update", table, err)
	}
	if res.MatchedCount == 0 {
		return backend.Fail("update", table, id, backend.ErrNotFound)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, table, id string) (int64, error) {
	res, err := b.db.Collection(table).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, backend.Wrap("delete", table, err)
	}
	return res.DeletedCount, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return backend.Wrap("ping", "", b.db.Client().Ping(ctx, nil))
}

// EnsureSchema creates collections with their JSON-Schema validators, then indexes.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	if err := validators.EnsureAll(ctx, b.db); err != nil {
		return backend.Fail("schema", "", "ensure validators", err)
	}
	if err := indexes.EnsureAll(ctx, b.db); err != nil {
		return backend.Fail("schema", "", "ensure indexes", err)
	}
	return nil
}

func (b *Backend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Disconnect(ctx); err != nil {
		b.log.Warn("mongo disconnect failed", zap.Error(err))
		return backend.Wrap("close", "", err)
	}
	return nil
}

func writeErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if wafflemongo.IsDup(err) || indexes.IsDuplicateKeyErr(err) {
		return backend.Fail(op, table, "unique key", backend.ErrDuplicate)
	}
	return backend.Wrap(op, table, err)
}

// column maps the query-layer primary key name onto Mongo's.
func column(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func filterDoc(filters []backend.Filter) bson.M {
	out := bson.M{}
	for _, f := range filters {
		col := column(f.Field)
		switch f.Op {
		case backend.OpEq:
			out[col] = f.Value
		case backend.OpIn:
			out[col] = bson.M{"$in": f.Value}
		case backend.OpGte, backend.OpLte:
			op := "$gte"
			if f.Op == backend.OpLte {
				op = "$lte"
			}
			rng, ok := out[col].(bson.M)
			if !ok {
				rng = bson.M{}
				out[col] = rng
			}
			rng[op] = f.Value
		case backend.OpIsNull:
			// Matches both explicit null and a missing field.
			out[col] = nil
		case backend.OpNotNull:
			out[col] = bson.M{"$ne": nil}
		}
	}
	return out
}

func sortDoc(keys []backend.SortKey) bson.D {
	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: column(k.Field), Value: dir})
	}
	return out
}

// flatten turns a row, a slice of rows, or a pointer to a slice into []any.
func flatten(rows any) []any {
	v := reflect.ValueOf(rows)
	if v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Slice {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return []any{rows}
	}
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}
