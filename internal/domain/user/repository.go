package user

import (
	"context"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ListActive(ctx context.Context) ([]User, error)
	ListManagers(ctx context.Context) ([]User, error)
}
