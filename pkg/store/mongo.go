package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
)

// MongoStore persists graphs in a MongoDB collection, for deployments
// where several analysts share one board server.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRecord is the stored document shape. Node and edge counts are
// denormalized so listings can project the graph away.
type mongoRecord struct {
	ID        string         `bson:"_id"`
	Name      string         `bson:"name,omitempty"`
	NodeCount int            `bson:"node_count"`
	EdgeCount int            `bson:"edge_count"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
	Graph     graph.Document `bson:"graph"`
}

func (d mongoRecord) record() Record {
	return Record{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Graph:     d.Graph,
	}
}

func (d mongoRecord) summary() Summary {
	return Summary{
		ID:        d.ID,
		Name:      d.Name,
		Nodes:     d.NodeCount,
		Edges:     d.EdgeCount,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// NewMongoStore connects to MongoDB and uses the "graphs" collection of
// the given database. The connection is verified with a ping before the
// store is returned.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("graphs"),
	}, nil
}

// Save writes a record.
func (s *MongoStore) Save(ctx context.Context, rec Record) (Record, error) {
	var existing time.Time
	if rec.ID != "" {
		var prev struct {
			CreatedAt time.Time `bson:"created_at"`
		}
		err := s.coll.FindOne(ctx, bson.M{"_id": rec.ID},
			options.FindOne().SetProjection(bson.M{"created_at": 1}),
		).Decode(&prev)
		switch {
		case err == mongo.ErrNoDocuments:
		case err != nil:
			return Record{}, errors.Wrap(errors.ErrCodeStore, err, "look up graph %s", rec.ID)
		default:
			existing = prev.CreatedAt
		}
	}
	rec = prepare(rec, existing)

	// BSON datetimes carry millisecond precision; truncate up front so
	// Save returns what Get will read back.
	rec.CreatedAt = rec.CreatedAt.Truncate(time.Millisecond)
	rec.UpdatedAt = rec.UpdatedAt.Truncate(time.Millisecond)

	doc := mongoRecord{
		ID:        rec.ID,
		Name:      rec.Name,
		NodeCount: len(rec.Graph.Nodes),
		EdgeCount: len(rec.Graph.Edges),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Graph:     rec.Graph,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "write graph %s", rec.ID)
	}
	return rec, nil
}

// Get retrieves a record by id.
func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Record{}, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeStore, err, "read graph %s", id)
	}
	return doc.record(), nil
}

// List returns summaries, most recently updated first.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
			SetProjection(bson.M{"graph": 0}),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list graphs")
	}

	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list graphs")
	}

	sums := make([]Summary, len(docs))
	for i, d := range docs {
		sums[i] = d.summary()
	}
	return sums, nil
}

// Delete removes a record.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete graph %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
