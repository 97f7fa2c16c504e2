package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"liveqa/entity"
	"liveqa/impl/repository"
	"liveqa/internal/config"
)

const (
	collectionModerators = "moderators"
)

// MongoDB keeps moderator accounts; a client is connected per call.
type MongoDB struct {
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(ctx context.Context, connection *mongo.Client) {
	_ = connection.Disconnect(ctx)
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find: %w", err)
}

// EnsureIndexes makes moderator emails and ids unique.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionModerators)
	_, err = collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongodb create indexes: %w", err)
	}
	return nil
}

func (m *MongoDB) SaveModerator(ctx context.Context, moderator *entity.Moderator) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionModerators)
	_, err = collection.InsertOne(ctx, moderator)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrUniqueViolation
	}
	return err
}

// ModeratorByEmail returns nil without error when no account matches.
func (m *MongoDB) ModeratorByEmail(ctx context.Context, email string) (*entity.Moderator, error) {
	return m.findModerator(ctx, bson.D{{Key: "email", Value: email}})
}

func (m *MongoDB) ModeratorById(ctx context.Context, id string) (*entity.Moderator, error) {
	return m.findModerator(ctx, bson.D{{Key: "id", Value: id}})
}

func (m *MongoDB) findModerator(ctx context.Context, filter bson.D) (*entity.Moderator, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionModerators)
	var moderator entity.Moderator
	if err = collection.FindOne(ctx, filter).Decode(&moderator); err != nil {
		return nil, m.findError(err)
	}
	return &moderator, nil
}

func (m *MongoDB) UpdateModeratorPassword(ctx context.Context, id, hash string) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionModerators)
	result, err := collection.UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "password_hash", Value: hash}}}},
	)
	if err != nil {
		return fmt.Errorf("mongodb update: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
