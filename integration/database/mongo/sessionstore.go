package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/pkg/token"
)

const sessionsCollection = "sessions"

// SessionStore implements session.Store on the sessions collection.
type SessionStore struct {
	coll *mongo.Collection
}

// NewSessionStore creates a session store on the database.
func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(sessionsCollection)}
}

// sessionDoc is the wire form. The rotation state maps onto the nullable
// old_session/new_session fields; at most one of them is ever set.
type sessionDoc struct {
	Token      []byte    `bson:"token"`
	UserUUID   string    `bson:"user_uuid"`
	Expires    time.Time `bson:"expires"`
	Persistent bool      `bson:"persistent"`
	CSRF       []byte    `bson:"csrf"`
	OldSession []byte    `bson:"old_session,omitempty"`
	NewSession []byte    `bson:"new_session,omitempty"`
}

func toSessionDoc(sess *session.Session) sessionDoc {
	doc := sessionDoc{
		Token:      sess.Token,
		UserUUID:   sess.UserUUID.String(),
		Expires:    sess.Expires,
		Persistent: sess.Persistent,
		CSRF:       sess.CSRFSecret,
	}
	if pred, ok := sess.Rotation.Predecessor(); ok {
		doc.OldSession = pred
	}
	if succ, ok := sess.Rotation.Successor(); ok {
		doc.NewSession = succ
	}
	return doc
}

func (d sessionDoc) toSession() (*session.Session, error) {
	userUUID, err := uuid.Parse(d.UserUUID)
	if err != nil {
		return nil, err
	}

	rotation := session.Fresh()
	switch {
	case len(d.OldSession) > 0:
		rotation = session.RotatedFrom(d.OldSession)
	case len(d.NewSession) > 0:
		rotation = session.RotatingTo(d.NewSession)
	}

	return &session.Session{
		Token:      d.Token,
		UserUUID:   userUUID,
		Expires:    d.Expires,
		Persistent: d.Persistent,
		CSRFSecret: d.CSRF,
		Rotation:   rotation,
	}, nil
}

func (s *SessionStore) Find(ctx context.Context, tok token.Token) (*session.Session, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"token": []byte(tok)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toSession()
}

func (s *SessionStore) Insert(ctx context.Context, sess *session.Session) error {
	_, err := s.coll.InsertOne(ctx, toSessionDoc(sess))
	if mongo.IsDuplicateKeyError(err) {
		return session.ErrDuplicateToken
	}
	return err
}

func (s *SessionStore) Replace(ctx context.Context, sess *session.Session) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"token": []byte(sess.Token)}, toSessionDoc(sess))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, tok token.Token) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"token": []byte(tok)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userUUID uuid.UUID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user_uuid": userUUID.String()})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *SessionStore) ListByUser(ctx context.Context, userUUID uuid.UUID, persistent bool, limit int) ([]session.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expires", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{"user_uuid": userUUID.String(), "persistent": persistent}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []sessionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	sessions := make([]session.Session, 0, len(docs))
	for _, doc := range docs {
		sess, err := doc.toSession()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, nil
}

func (s *SessionStore) DeleteExpiringBefore(ctx context.Context, userUUID uuid.UUID, persistent bool, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{
		"user_uuid":  userUUID.String(),
		"persistent": persistent,
		"expires":    bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
