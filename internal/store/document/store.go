// Package document implements the Credential Store on MongoDB.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
)

const (
	// DefaultDatabase is used when the connection string names none.
	DefaultDatabase   = "accountd"
	collectionName    = "users"
	defaultConnectTTL = 10 * time.Second
)

// Config describes how to reach MongoDB.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	Clock          func() time.Time
}

// Store is the MongoDB-backed Credential Store.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects, verifies the connection and ensures the unique indexes on
// email and username exist.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("document: connection string is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTTL
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("document: connect: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(cfg.Database).Collection(collectionName),
		now:    time.Now,
	}
	if cfg.Clock != nil {
		s.now = cfg.Clock
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("document: ping: %w", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("document: create indexes: %w", err)
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "find by email", emailFilter(email))
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	filter, ok := idFilter(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.findOne(ctx, "find by id", filter)
}

func (s *Store) findOne(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(op, err)
	}
	return doc.toModel(), nil
}

func (s *Store) Insert(ctx context.Context, in store.NewUser) (*models.User, error) {
	doc := newDocument(in, s.now().UTC())
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return nil, translate("insert", err)
	}
	return doc.toModel(), nil
}

func (s *Store) Update(ctx context.Context, id string, update store.UserUpdate) (*models.User, error) {
	filter, ok := idFilter(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	var doc userDocument
	err := s.users.FindOneAndUpdate(ctx, filter, updateDocument(update, s.now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, translate("update", err)
	}
	return doc.toModel(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	filter, ok := idFilter(id)
	if !ok {
		return store.ErrNotFound
	}
	res, err := s.users.DeleteOne(ctx, filter)
	if err != nil {
		return translate("delete", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.users.DeleteMany(ctx, bson.D{}); err != nil {
		return translate("delete all", err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate("list", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate("list", err)
	}
	users := make([]models.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toModel())
	}
	return users, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("document: %s: %w", op, store.ErrConflict)
	default:
		return fmt.Errorf("document: %s: %w", op, err)
	}
}
