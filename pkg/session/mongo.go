package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "relgraph"
	DefaultMongoCollection = "sessions"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI         string
	Database    string
	Collection  string
	MaxSessions int
	TTL         time.Duration
}

// MongoStore keeps sessions in a MongoDB collection. A TTL index on
// expires_at lets the server drop expired documents; Get and Cleanup also
// check the expiry themselves because the TTL monitor runs only once a
// minute.
type MongoStore struct {
	client      *mongo.Client
	coll        *mongo.Collection
	maxSessions int
	ttl         time.Duration
}

// mongoSession is the stored form. The graph is kept as JSON so that record
// attributes keep their order.
type mongoSession struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Encoding  string    `bson:"encoding"`
	Source    []byte    `bson:"source"`
	Graph     []byte    `bson:"graph"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// NewMongoStore connects, pings and ensures the TTL index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	maxSessions, ttl := limits(cfg.MaxSessions, cfg.TTL)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, maxSessions: maxSessions, ttl: ttl}, nil
}

// Get implements [Store].
func (m *MongoStore) Get(ctx context.Context, id string) (*Session, error) {
	now := time.Now()
	filter := bson.M{"_id": id, "expires_at": bson.M{"$gt": now}}
	update := bson.M{"$set": bson.M{"expires_at": now.Add(m.ttl)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoSession
	err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return doc.session()
}

// Put implements [Store]. Inserting beyond the capacity removes the
// sessions closest to expiry.
func (m *MongoStore) Put(ctx context.Context, s *Session) error {
	s.ExpiresAt = time.Now().Add(m.ttl)
	doc, err := newMongoSession(s)
	if err != nil {
		return err
	}
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if res.UpsertedCount > 0 {
		return m.enforceCapacity(ctx)
	}
	return nil
}

func (m *MongoStore) enforceCapacity(ctx context.Context) error {
	count, err := m.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	excess := count - int64(m.maxSessions)
	if excess <= 0 {
		return nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "expires_at", Value: 1}}).
		SetLimit(excess).
		SetProjection(bson.M{"_id": 1})
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("find oldest sessions: %w", err)
	}
	var victims []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &victims); err != nil {
		return fmt.Errorf("read oldest sessions: %w", err)
	}
	ids := make([]string, len(victims))
	for i, v := range victims {
		ids[i] = v.ID
	}
	if _, err := m.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("evict sessions: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Cleanup implements [Store].
func (m *MongoStore) Cleanup(ctx context.Context) (int, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return int(res.DeletedCount), nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func newMongoSession(s *Session) (mongoSession, error) {
	g, err := json.Marshal(s.Graph)
	if err != nil {
		return mongoSession{}, fmt.Errorf("marshal graph: %w", err)
	}
	return mongoSession{
		ID:        s.ID,
		Name:      s.Name(),
		Encoding:  s.Encoding,
		Source:    s.Source,
		Graph:     g,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

func (d mongoSession) session() (*Session, error) {
	var g graph.Graph
	if err := json.Unmarshal(d.Graph, &g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return &Session{
		ID:        d.ID,
		Source:    d.Source,
		Encoding:  d.Encoding,
		Graph:     &g,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}, nil
}

var _ Store = (*MongoStore)(nil)
