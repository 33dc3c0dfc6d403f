package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"nestaway/internal/cache"
	"nestaway/internal/database"
	"nestaway/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository returns a UserRepository over the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.NewNotFoundMessage("User not found")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Prepare()
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Email already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mongoUserRepository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"verified": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundMessage("User not found")
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *mongoUserRepository) ListUnverified(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit))
	cur, err := r.users.Find(ctx, bson.M{"verified": false}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

type mongoPropertyRepository struct {
	properties *mongo.Collection
	users      *mongo.Collection
}

// NewMongoPropertyRepository returns a PropertyRepository over the properties
// collection. Images and reviews are embedded in each document; host and
// reviewer identities are joined from the users collection on read.
func NewMongoPropertyRepository(db *mongo.Database) PropertyRepository {
	return &mongoPropertyRepository{
		properties: db.Collection(database.PropertiesCollection),
		users:      db.Collection(database.UsersCollection),
	}
}

func (r *mongoPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	property.Prepare()
	if _, err := r.properties.InsertOne(ctx, property); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mongoPropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := cache.Aside(ctx, cache.PropertyKey(id), &property, cache.PropertyTTL, func() error {
		if err := r.properties.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.NewNotFoundMessage("Property not found")
			}
			return models.NewInternalError(err)
		}
		page := []models.Property{property}
		if err := r.joinUsers(ctx, page); err != nil {
			return err
		}
		property = page[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// mongoListingFilter translates f into a query document.
func mongoListingFilter(f PropertyFilter) bson.M {
	filter := bson.M{"isAvailable": true}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"location": rx},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		price := bson.M{}
		if f.PriceMin != nil {
			price["$gte"] = *f.PriceMin
		}
		if f.PriceMax != nil {
			price["$lte"] = *f.PriceMax
		}
		filter["price"] = price
	}
	if f.MinBeds > 0 {
		filter["beds"] = bson.M{"$gte": f.MinBeds}
	}
	if f.RoomType != "" {
		filter["roomType"] = f.RoomType
	}
	if f.MinGuests > 0 {
		filter["maxGuests"] = bson.M{"$gte": f.MinGuests}
	}
	return filter
}

func mongoListingSort(sort string) bson.D {
	newest := bson.E{Key: "createdAt", Value: -1}
	switch sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, newest}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, newest}
	case SortRating:
		return bson.D{{Key: "rating", Value: -1}, newest}
	default:
		return bson.D{newest}
	}
}

func (r *mongoPropertyRepository) List(ctx context.Context, f PropertyFilter) ([]models.Property, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	filter := mongoListingFilter(f)

	total, err := r.properties.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	properties := []models.Property{}
	if total == 0 {
		return properties, 0, nil
	}

	opts := options.Find().
		SetSort(mongoListingSort(f.Sort)).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))
	if err := r.find(ctx, filter, opts, &properties); err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *mongoPropertyRepository) ListByHost(ctx context.Context, hostID string) ([]models.Property, error) {
	properties := []models.Property{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := r.find(ctx, bson.M{"host": hostID}, opts, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *mongoPropertyRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions, dest *[]models.Property) error {
	cur, err := r.properties.Find(ctx, filter, opts)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := cur.All(ctx, dest); err != nil {
		return models.NewInternalError(err)
	}
	return r.joinUsers(ctx, *dest)
}

// joinUsers resolves host and reviewer identities for a page of listings.
func (r *mongoPropertyRepository) joinUsers(ctx context.Context, page []models.Property) error {
	ids := map[string]struct{}{}
	for _, p := range page {
		ids[p.HostID] = struct{}{}
		for _, rv := range p.Reviews {
			ids[rv.UserID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	in := make(bson.A, 0, len(ids))
	for id := range ids {
		in = append(in, id)
	}

	opts := options.Find().SetProjection(bson.M{"firstName": 1, "lastName": 1})
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": in}}, opts)
	if err != nil {
		return models.NewInternalError(err)
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return models.NewInternalError(err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for i := range page {
		p := &page[i]
		if u, ok := byID[p.HostID]; ok {
			p.HostInfo = u.Summary()
		}
		if p.Images == nil {
			p.Images = []models.PropertyImage{}
		}
		if p.Amenities == nil {
			p.Amenities = []string{}
		}
		if p.Reviews == nil {
			p.Reviews = []models.Review{}
		}
		for j := range p.Reviews {
			if u, ok := byID[p.Reviews[j].UserID]; ok {
				p.Reviews[j].Reviewer = u.Summary()
			}
		}
	}
	return nil
}
