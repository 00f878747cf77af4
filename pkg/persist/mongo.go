package persist

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "nodecanvas"
	DefaultMongoCollection = "diagrams"
)

// MongoConfig configures a [MongoSink].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoSink stores each diagram as a document keyed by name. JSON payloads
// are stored as native sub-documents so they stay queryable; other payloads
// are stored as binary.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDiagram struct {
	Name      string    `bson:"_id"`
	Diagram   bson.Raw  `bson:"diagram,omitempty"`
	Raw       []byte    `bson:"raw,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoSink connects to MongoDB and pings the server.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storageErr(err, "ping mongo")
	}
	database := cfg.Database
	if database == "" {
		database = DefaultMongoDatabase
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoSink{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Name implements [Sink].
func (s *MongoSink) Name() string { return "mongo" }

// Save implements [Sink].
func (s *MongoSink) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	doc := mongoDiagram{Name: name, UpdatedAt: time.Now().UTC()}
	var diagram bson.D
	if err := bson.UnmarshalExtJSON(data, false, &diagram); err == nil {
		raw, err := bson.Marshal(diagram)
		if err != nil {
			return storageErr(err, "encode %s", name)
		}
		doc.Diagram = raw
	} else {
		doc.Raw = data
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr(err, "mongo replace %s", name)
	}
	return nil
}

// Load implements [Sink]. Stored documents are returned as relaxed
// extended JSON.
func (s *MongoSink) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	var doc mongoDiagram
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "mongo find %s", name)
	}
	if doc.Diagram == nil {
		return doc.Raw, nil
	}
	data, err := bson.MarshalExtJSON(doc.Diagram, false, false)
	if err != nil {
		return nil, storageErr(err, "decode %s", name)
	}
	return data, nil
}

// Delete implements [Sink].
func (s *MongoSink) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return storageErr(err, "mongo delete %s", name)
	}
	return nil
}

// List implements [Sink].
func (s *MongoSink) List(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, storageErr(err, "mongo list")
	}
	var docs []struct {
		Name string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "mongo list")
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	slices.Sort(names)
	return names, nil
}

// Close disconnects the client.
func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Sink = (*MongoSink)(nil)
