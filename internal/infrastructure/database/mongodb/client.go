// Package mongodb wraps the MongoDB driver connection the blocking index
// (internal/blocking) is built on.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

type Config struct {
	URI      string
	Database string
}

func NewClient(config *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)

	clientOptions.SetMaxPoolSize(100)
	clientOptions.SetMinPoolSize(5)
	clientOptions.SetMaxConnIdleTime(30 * time.Minute)
	clientOptions.SetConnectTimeout(10 * time.Second)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	clientOptions.SetReadPreference(readpref.Primary())
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	client := &Client{
		client:   mongoClient,
		database: mongoClient.Database(config.Database),
	}

	if err := client.Ping(ctx); err != nil {
		client.Close(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("MongoDB client is nil")
	}

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

func (c *Client) CreateCollection(ctx context.Context, name string, opts ...*options.CreateCollectionOptions) error {
	err := c.database.CreateCollection(ctx, name, opts...)
	if cmdErr, ok := err.(mongo.CommandError); ok && cmdErr.Code == 48 {
		return nil // NamespaceExists: rebuild-on-start is idempotent
	}
	return err
}

func (c *Client) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	coll := c.Collection(collection)
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return err
	}

	testCollection := c.Collection("_health_check")
	testDoc := map[string]interface{}{
		"timestamp": time.Now(),
		"test":      "health_check",
	}

	result, err := testCollection.InsertOne(ctx, testDoc)
	if err != nil {
		return fmt.Errorf("health check insert failed: %w", err)
	}

	var readDoc map[string]interface{}
	err = testCollection.FindOne(ctx, map[string]interface{}{"_id": result.InsertedID}).Decode(&readDoc)
	if err != nil {
		return fmt.Errorf("health check read failed: %w", err)
	}

	_, err = testCollection.DeleteOne(ctx, map[string]interface{}{"_id": result.InsertedID})
	if err != nil {
		return fmt.Errorf("health check cleanup failed: %w", err)
	}

	return nil
}
