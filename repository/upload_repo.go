package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tieubaoca/manualbot/types"
)

// UploadRepo stores one record per successful ingestion.
type UploadRepo interface {
	CreateUpload(ctx context.Context, record *types.UploadRecord) error
	ListUploads(ctx context.Context, title string) ([]*types.UploadRecord, error)
	DeleteUploads(ctx context.Context, title string) (int64, error)
}

type uploadRepo struct {
	collection *mongo.Collection
}

func NewUploadRepo(collection *mongo.Collection) UploadRepo {
	return &uploadRepo{
		collection: collection,
	}
}

func (r *uploadRepo) CreateUpload(ctx context.Context, record *types.UploadRecord) error {
	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		record.ID = id.Hex()
	}
	return nil
}

func (r *uploadRepo) ListUploads(ctx context.Context, title string) ([]*types.UploadRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"title": title}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]*types.UploadRecord, 0)
	for cursor.Next(ctx) {
		var record types.UploadRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, cursor.Err()
}

func (r *uploadRepo) DeleteUploads(ctx context.Context, title string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"title": title})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
