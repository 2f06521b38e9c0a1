package database

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	connectOnce sync.Once
	client      *mongo.Client
	db          *mongo.Database
	connectErr  error
)

// Connect establishes the process-wide client on first call; later calls
// return the same handle. The driver pools connections internally, so one
// client is shared across all requests.
func Connect(uri, dbName string) (*mongo.Database, error) {
	connectOnce.Do(func() {
		if uri == "" {
			connectErr = errors.New("mongo uri is empty")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			connectErr = err
			return
		}

		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			connectErr = err
			return
		}

		client = c
		db = c.Database(dbName)
		log.Println("[DB] connected to", dbName)
	})
	return db, connectErr
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
