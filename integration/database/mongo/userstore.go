package mongo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/openmarks/gradebook/core/credentials"
)

const usersCollection = "users"

// UserStore implements credentials.Store on the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a user store on the database.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	UUID      string `bson:"uuid"`
	LoginName string `bson:"login_name"`
	Name      string `bson:"name"`
	Role      string `bson:"role"`
	Password  []byte `bson:"password,omitempty"`
	Salt      []byte `bson:"salt,omitempty"`
}

func toUserDoc(user *credentials.User) userDoc {
	return userDoc{
		UUID:      user.UUID.String(),
		LoginName: user.LoginName,
		Name:      user.Name,
		Role:      string(user.Role),
		Password:  user.PasswordHash,
		Salt:      user.PasswordSalt,
	}
}

func (d userDoc) toUser() (*credentials.User, error) {
	id, err := uuid.Parse(d.UUID)
	if err != nil {
		return nil, err
	}
	return &credentials.User{
		UUID:         id,
		LoginName:    d.LoginName,
		Name:         d.Name,
		Role:         credentials.Role(d.Role),
		PasswordHash: d.Password,
		PasswordSalt: d.Salt,
	}, nil
}

func (s *UserStore) Insert(ctx context.Context, user *credentials.User) error {
	_, err := s.coll.InsertOne(ctx, toUserDoc(user))
	if mongo.IsDuplicateKeyError(err) {
		return credentials.ErrDuplicateLogin
	}
	return err
}

func (s *UserStore) FindByLogin(ctx context.Context, loginName string) (*credentials.User, error) {
	return s.findOne(ctx, bson.M{"login_name": loginName})
}

func (s *UserStore) FindByUUID(ctx context.Context, id uuid.UUID) (*credentials.User, error) {
	return s.findOne(ctx, bson.M{"uuid": id.String()})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*credentials.User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, credentials.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toUser()
}

// FindProfile loads a user with the credential fields projected away, so hash
// and salt never leave the database on the resolution path.
func (s *UserStore) FindProfile(ctx context.Context, id uuid.UUID) (*credentials.Profile, error) {
	opts := options.FindOne().SetProjection(bson.M{"password": 0, "salt": 0})

	var doc userDoc
	err := s.coll.FindOne(ctx, bson.M{"uuid": id.String()}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, credentials.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user, err := doc.toUser()
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"uuid": id.String()},
		bson.M{"$set": bson.M{"password": hash, "salt": salt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return credentials.ErrUserNotFound
	}
	return nil
}
