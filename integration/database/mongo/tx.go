package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// TxRunner implements session.Transactor over MongoDB multi-document
// transactions. The context passed to fn carries the mongo session, so every
// collection operation performed with it joins the transaction: a rotation's
// successor insert and link clear commit atomically with whatever business
// mutation the request performs.
//
// WithTransaction retries transient transaction errors internally per the
// driver's policy; callers see only the final outcome.
type TxRunner struct {
	client *mongo.Client
}

// NewTxRunner creates a transaction runner on the client.
func NewTxRunner(client *mongo.Client) *TxRunner {
	return &TxRunner{client: client}
}

// WithinTx runs fn inside one MongoDB transaction.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
