// Package mongovec implements the vector store on MongoDB Atlas Vector
// Search: one document per chunk, an "embedding" vector field, and a
// $vectorSearch aggregation for retrieval.
package mongovec

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ncpa-assist/internal/logger"
	"ncpa-assist/internal/vectorstore"
	"ncpa-assist/models"
)

type Store struct {
	coll      *mongo.Collection
	indexName string
	timeout   time.Duration
	batchSize int
}

type Config struct {
	Client     *mongo.Client
	Database   string
	Collection string
	IndexName  string
	Timeout    time.Duration
	BatchSize  int
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Store{
		coll:      cfg.Client.Database(cfg.Database).Collection(cfg.Collection),
		indexName: cfg.IndexName,
		timeout:   timeout,
		batchSize: batchSize,
	}
}

type record struct {
	ID         string            `bson:"_id"`
	Text       string            `bson:"text"`
	SourceURL  string            `bson:"source_url"`
	SourceType models.SourceType `bson:"source_type"`
	PDFPath    string            `bson:"pdf_path,omitempty"`
	Embedding  []float32         `bson:"embedding"`
	Score      float64           `bson:"score,omitempty"`
}

// EnsureReady creates the Atlas vector search index if it does not exist.
// Index creation is an Atlas-only feature; against a plain mongod the call
// fails and is logged, and search will report its own error later.
func (s *Store) EnsureReady(ctx context.Context, dims int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: "embedding"},
				{Key: "numDimensions", Value: dims},
				{Key: "similarity", Value: "cosine"},
			},
		}},
	}
	model := mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(s.indexName).SetType("vectorSearch"),
	}
	if _, err := s.coll.SearchIndexes().CreateOne(ctx, model); err != nil {
		logger.Warn("vector search index creation failed (may already exist or require Atlas)",
			"index", s.indexName, "error", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.upsertBatch(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertBatch(ctx context.Context, records []vectorstore.Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		doc := record{
			ID:         r.ID,
			Text:       r.Payload.Text,
			SourceURL:  r.Payload.SourceURL,
			SourceType: r.Payload.SourceType,
			PDFPath:    r.Payload.PDFPath,
			Embedding:  r.Vector,
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: r.ID}}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("vector store upsert failed: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Hit, error) {
	if k <= 0 {
		k = 4
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.indexName},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "source_url", Value: 1},
			{Key: "source_type", Value: 1},
			{Key: "pdf_path", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var hits []vectorstore.Hit
	for cursor.Next(ctx) {
		var doc record
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode search hit: %w", err)
		}
		hits = append(hits, vectorstore.Hit{
			Record: vectorstore.Record{
				ID: doc.ID,
				Payload: models.Chunk{
					Text:       doc.Text,
					SourceURL:  doc.SourceURL,
					SourceType: doc.SourceType,
					PDFPath:    doc.PDFPath,
				},
			},
			Score: doc.Score,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("vector search cursor failed: %w", err)
	}
	return hits, nil
}
