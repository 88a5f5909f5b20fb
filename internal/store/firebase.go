package store

import (
	"context"
	"encoding/json"

	"firebase.google.com/go/v4/db"
)

type firebaseBackend struct {
	client *db.Client
}

// NewFirebaseBackend adapts a Realtime Database client to the Backend
// interface.
func NewFirebaseBackend(client *db.Client) Backend {
	return &firebaseBackend{client: client}
}

func (b *firebaseBackend) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.client.NewRef(path).Get(ctx, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *firebaseBackend) Set(ctx context.Context, path string, value interface{}) error {
	return b.client.NewRef(path).Set(ctx, value)
}

func (b *firebaseBackend) Push(ctx context.Context, path string, value interface{}) (string, error) {
	ref, err := b.client.NewRef(path).Push(ctx, value)
	if err != nil {
		return "", err
	}
	return ref.Key, nil
}

func (b *firebaseBackend) Delete(ctx context.Context, path string) error {
	return b.client.NewRef(path).Delete(ctx)
}
