package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"apoiasync/entity"
	"apoiasync/internal/config"
)

const (
	collectionSubscribers = "subscribers"
	collectionSyncReports = "sync_reports"
)

type MongoDB struct {
	ctx           context.Context
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
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) RegisterSubscriber(telegramId int64, username string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscribers)
	filter := bson.D{{Key: "telegram_id", Value: telegramId}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "username", Value: username},
			{Key: "enabled", Value: true},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "registered_at", Value: time.Now().UTC()},
		}},
	}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

func (m *MongoDB) SetSubscriberEnabled(telegramId int64, enabled bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscribers)
	filter := bson.D{{Key: "telegram_id", Value: telegramId}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "enabled", Value: enabled}}}}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) GetSubscriber(telegramId int64) (*entity.Subscriber, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscribers)
	filter := bson.D{{Key: "telegram_id", Value: telegramId}}
	var subscriber entity.Subscriber
	err = collection.FindOne(m.ctx, filter).Decode(&subscriber)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &subscriber, nil
}

func (m *MongoDB) GetSubscribers() ([]*entity.Subscriber, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscribers)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var subscribers []*entity.Subscriber
	err = cursor.All(m.ctx, &subscribers)
	if err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (m *MongoDB) SaveSyncReport(report *entity.SyncReport) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSyncReports)
	_, err = collection.InsertOne(m.ctx, report)
	return err
}

func (m *MongoDB) LastSyncReport() (*entity.SyncReport, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSyncReports)
	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})
	var report entity.SyncReport
	err = collection.FindOne(m.ctx, bson.D{}, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &report, nil
}
