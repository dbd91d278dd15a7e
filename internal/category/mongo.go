package category

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// MongoRepo implements Repository on a MongoDB collection. Names are stored
// lowercase, so the case-insensitive uniqueness contract reduces to an exact
// match on the stored form.
type MongoRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	if _, err := col.Indexes().CreateOne(context.Background(),
		mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}); err != nil {
		logger.Warnf("category: failed to create id index: %v", err)
	}
	if _, err := col.Indexes().CreateOne(context.Background(),
		mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}}}); err != nil {
		logger.Warnf("category: failed to create userId/name index: %v", err)
	}
	return &MongoRepo{col: col, now: time.Now}
}

func (r *MongoRepo) Create(ctx context.Context, c *Category) (string, error) {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	c.normalize(r.now())
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

func (r *MongoRepo) Get(ctx context.Context, userID, id string) (*Category, error) {
	return r.findOne(ctx, bson.M{"id": id, "userId": userID})
}

func (r *MongoRepo) FindByName(ctx context.Context, userID, name string) (*Category, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "name": NormalizeName(name)})
}

func (r *MongoRepo) findOne(ctx context.Context, filter bson.M) (*Category, error) {
	var c Category
	if err := r.col.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.normalize(r.now())
	return &c, nil
}

func (r *MongoRepo) List(ctx context.Context, userID string) ([]*Category, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Category{}
	for cur.Next(ctx) {
		var c Category
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		c.normalize(r.now())
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *MongoRepo) Rename(ctx context.Context, userID, id, name string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": id, "userId": userID},
		bson.M{"$set": bson.M{"name": NormalizeName(name)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Watch(ctx context.Context, userID string) (*stream.Stream[[]*Category], error) {
	cs, err := r.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	s := stream.New[[]*Category]()
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
			list, err := r.List(wctx, userID)
			if err != nil {
				s.Fail(err)
				return
			}
			s.Publish(list)
		}
		if err := cs.Err(); err != nil && wctx.Err() == nil {
			s.Fail(err)
		}
	}()
	return s, nil
}
