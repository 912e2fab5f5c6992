package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Txn runs a function inside a MongoDB multi-document transaction. Store
// methods called with the session context join it, so the coordinator's
// read-validate-commit sequence is all-or-nothing.
type Txn struct {
	client *mongo.Client
}

func NewTxn(client *mongo.Client) *Txn {
	return &Txn{client: client}
}

func (t *Txn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
