package pantry

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// MongoRepo implements Repository on a MongoDB collection. Items are keyed by
// an "id" string field, one document per item, all users in one collection
// scoped by "userId".
type MongoRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// id lookups and the per-user category scans both need indexes
	if _, err := col.Indexes().CreateOne(context.Background(),
		mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}); err != nil {
		logger.Warnf("pantry: failed to create id index: %v", err)
	}
	if _, err := col.Indexes().CreateOne(context.Background(),
		mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "category", Value: 1}}}); err != nil {
		logger.Warnf("pantry: failed to create userId/category index: %v", err)
	}
	return &MongoRepo{col: col, now: time.Now}
}

// rawItem matches documents as other clients may have written them: quantity
// may be a string or a number, addedAt may be missing or malformed.
type rawItem struct {
	ID         string      `bson:"id"`
	UserID     string      `bson:"userId"`
	Name       string      `bson:"name"`
	Category   []string    `bson:"category"`
	Quantity   interface{} `bson:"quantity,omitempty"`
	Unit       string      `bson:"unit,omitempty"`
	ExpireDate string      `bson:"expireDate,omitempty"`
	AddedAt    interface{} `bson:"addedAt,omitempty"`
}

func (r *MongoRepo) fromRaw(raw *rawItem) *Item {
	it := &Item{
		ID:         raw.ID,
		UserID:     raw.UserID,
		Name:       raw.Name,
		Category:   raw.Category,
		Quantity:   NormalizeQuantity(raw.Quantity),
		Unit:       raw.Unit,
		ExpireDate: raw.ExpireDate,
		AddedAt:    coerceTime(raw.AddedAt),
	}
	it.normalize(r.now())
	return it
}

func coerceTime(raw interface{}) time.Time {
	switch t := raw.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	default:
		return time.Time{}
	}
}

func (r *MongoRepo) Create(ctx context.Context, item *Item) (string, error) {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	item.normalize(r.now())
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

func (r *MongoRepo) Get(ctx context.Context, userID, id string) (*Item, error) {
	var raw rawItem
	err := r.col.FindOne(ctx, bson.M{"id": id, "userId": userID}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.fromRaw(&raw), nil
}

func (r *MongoRepo) List(ctx context.Context, userID string) (Snapshot, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoRepo) FindByCategory(ctx context.Context, userID, name string) (Snapshot, error) {
	return r.find(ctx, bson.M{"userId": userID, "category": name})
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M) (Snapshot, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := Snapshot{}
	for cur.Next(ctx) {
		var raw rawItem
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, r.fromRaw(&raw))
	}
	return out, cur.Err()
}

func (r *MongoRepo) Update(ctx context.Context, userID, id string, upd Update) error {
	set := bson.M{}
	unset := bson.M{}
	if upd.Name != nil {
		if n := strings.TrimSpace(*upd.Name); n != "" {
			set["name"] = n
		}
	}
	if upd.Category != nil {
		set["category"] = NormalizeCategories(*upd.Category)
	}
	applyOptional(set, unset, "quantity", upd.Quantity)
	applyOptional(set, unset, "unit", upd.Unit)
	applyOptional(set, unset, "expireDate", upd.ExpireDate)

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return nil
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id, "userId": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// applyOptional implements the delete-marker contract: nil leaves the field
// alone, a pointer to the empty string removes it, anything else sets it.
func applyOptional(set, unset bson.M, field string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		set[field] = s
	} else {
		unset[field] = ""
	}
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

func (r *MongoRepo) ReplaceCategories(ctx context.Context, userID, id string, categories []string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": id, "userId": userID},
		bson.M{"$set": bson.M{"category": categories}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch opens a change stream on the collection and republishes the user's
// full item list after every change. Delete events carry no document body,
// so the stream listens collection-wide and re-queries per event rather than
// filtering server-side.
func (r *MongoRepo) Watch(ctx context.Context, userID string) (*stream.Stream[Snapshot], error) {
	cs, err := r.col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	s := stream.New[Snapshot]()
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
			snap, err := r.List(wctx, userID)
			if err != nil {
				s.Fail(err)
				return
			}
			s.Publish(snap)
		}
		if err := cs.Err(); err != nil && wctx.Err() == nil {
			s.Fail(err)
		}
	}()
	return s, nil
}
