package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/copybench/pkg/logger"
	"github.com/BartekS5/copybench/pkg/models"
)

const resultsCollection = "transfer_results"

// Inserter is the part of *mongo.Collection the store needs.
type Inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoStore persists every result as a document tagged with the run id,
// so several benchmark runs can be compared later.
type MongoStore struct {
	RunID string
	Coll  Inserter
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		RunID: uuid.NewString(),
		Coll:  client.Database(database).Collection(resultsCollection),
	}
}

func (m *MongoStore) Begin(models.QueryDescriptor) {}

func (m *MongoStore) Report(ctx context.Context, res models.TransferResult) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := m.Coll.InsertOne(ctx, m.document(res)); err != nil {
		logger.Errorf("Could not store result of %s/%s: %v", res.Query, res.Strategy, err)
	}
}

func (m *MongoStore) document(res models.TransferResult) bson.M {
	doc := bson.M{
		"runId":     m.RunID,
		"strategy":  string(res.Strategy),
		"query":     res.Query,
		"sql":       res.SQL,
		"startedAt": res.Started,
		"elapsedMs": res.Elapsed.Milliseconds(),
		"seconds":   res.Elapsed.Seconds(),
		"rows":      res.Rows,
		"success":   res.Succeeded(),
	}
	if res.Err != nil {
		doc["error"] = res.Err.Error()
	}
	return doc
}
