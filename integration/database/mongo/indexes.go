package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the session engine relies on. Safe to
// run on every startup; existing indexes are left alone.
//
// The TTL index on sessions.expires is a backstop: resolution and logout
// delete rows explicitly, the TTL sweep collects whatever they miss.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "login_name", Value: 1}},
			Options: options.Index().SetName("login_name").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetName("uuid").SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(sessionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("token").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_uuid", Value: 1}},
			Options: options.Index().SetName("user_uuid"),
		},
		{
			Keys:    bson.D{{Key: "expires", Value: 1}},
			Options: options.Index().SetName("expires").SetExpireAfterSeconds(0),
		},
	})
	return err
}
