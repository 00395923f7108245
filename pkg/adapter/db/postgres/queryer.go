package postgres

import (
	"context"

	"github.com/migrata/migrata/pkg/core/repo"
	"gorm.io/gorm"
)

type Queryer interface {
	*Conn | *Tx
	repo.Queryer

	// GORM exposes the wrapped *gorm.DB, bound to the ctx context.
	GORM(ctx context.Context) *gorm.DB
}
