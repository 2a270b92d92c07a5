// Package dbctx carries a request context and an optional open transaction
// through repo calls.
package dbctx

import (
	"context"

	"gorm.io/gorm"
)

type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Of wraps ctx without a transaction.
func Of(ctx context.Context) Context { return Context{Ctx: ctx} }

// InTx reports whether calls run inside a caller-owned transaction.
func (c Context) InTx() bool { return c.Tx != nil }

// Conn returns the transaction when one is open, otherwise fallback, bound
// to the request context.
func (c Context) Conn(fallback *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = fallback
	}
	if db == nil {
		return nil
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx)
}
