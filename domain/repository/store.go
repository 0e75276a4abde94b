package repository

import "context"

// Store is the persistence contract shared by the record collections.
// Identity is assigned by the store on Insert.
type Store[T any] interface {
	Insert(ctx context.Context, record T) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
}
