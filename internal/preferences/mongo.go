package preferences

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// MongoRepo stores one document per (user, key). Value add/remove map onto
// $addToSet / $pull so sibling keys are never rewritten.
type MongoRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	if _, err := col.Indexes().CreateOne(context.Background(),
		mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)}); err != nil {
		logger.Warnf("preferences: failed to create userId/key index: %v", err)
	}
	return &MongoRepo{col: col, now: time.Now}
}

func (r *MongoRepo) List(ctx context.Context, userID string) ([]*Doc, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Doc{}
	for cur.Next(ctx) {
		var d Doc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		if d.Items == nil {
			d.Items = []string{}
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (r *MongoRepo) Get(ctx context.Context, userID, key string) (*Doc, error) {
	if !IsKnown(key) {
		return nil, ErrUnknownKey
	}
	var d Doc
	err := r.col.FindOne(ctx, bson.M{"userId": userID, "key": key}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &Doc{UserID: userID, Key: key, Items: []string{}}, nil
		}
		return nil, err
	}
	if d.Items == nil {
		d.Items = []string{}
	}
	return &d, nil
}

func (r *MongoRepo) AddValue(ctx context.Context, userID, key, value string) error {
	if !IsKnown(key) {
		return ErrUnknownKey
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "key": key},
		bson.M{
			"$addToSet": bson.M{"items": value},
			"$set":      bson.M{"updatedAt": r.now()},
		},
		options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepo) RemoveValue(ctx context.Context, userID, key, value string) error {
	if !IsKnown(key) {
		return ErrUnknownKey
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "key": key},
		bson.M{
			"$pull": bson.M{"items": value},
			"$set":  bson.M{"updatedAt": r.now()},
		})
	return err
}

func (r *MongoRepo) Watch(ctx context.Context, userID string) (*stream.Stream[[]*Doc], error) {
	cs, err := r.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	s := stream.New[[]*Doc]()
	if initial, err := r.List(ctx, userID); err == nil {
		s.Publish(initial)
	} else {
		cs.Close(ctx)
		s.Fail(err)
		return s, nil
	}

	wctx, cancel := context.WithCancel(ctx)
	go func() {
		<-s.Done()
		cancel()
	}()
	go func() {
		defer cs.Close(context.Background())
		defer s.Unsubscribe()
		for cs.Next(wctx) {
			docs, err := r.List(wctx, userID)
			if err != nil {
				s.Fail(err)
				return
			}
			s.Publish(docs)
		}
		if err := cs.Err(); err != nil && wctx.Err() == nil {
			s.Fail(err)
		}
	}()
	return s, nil
}
