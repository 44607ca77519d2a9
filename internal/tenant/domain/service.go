package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (Tenant, error)
	GetBySlug(ctx context.Context, slug string) (Tenant, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidSlug   = errors.New("invalid_slug")
	ErrNotFound      = errors.New("not_found")
)
