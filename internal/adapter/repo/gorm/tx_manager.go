package gormrepo

import (
	"context"

	"gorm.io/gorm"
)

// TxManager wraps checkpoint writes in one database transaction, so a
// behavior snapshot and its event batch commit or roll back together.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return TxManager{db: db}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
