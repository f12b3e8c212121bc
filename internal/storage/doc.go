// Package storage provides SQLite persistence for customers, the product
// catalog and orders.
//
// # Database Schema
//
// Tables:
//   - customers: name, optional email and phone
//   - products: catalog name (unique) and current unit price
//   - orders: owning customer, ISO date, total fixed at save time
//   - order_items: product name and unit price snapshots, quantity > 0
//   - schema_version: applied migrations
//
// Deleting a customer cascades to its orders, and deleting an order cascades
// to its items. Foreign key enforcement is switched on when the database is
// opened and verified before use.
//
// Money columns are TEXT holding decimal strings, scanned straight into
// decimal.Decimal.
//
// # Transactions
//
// Use transactions for atomic multi-row writes:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tx.Rollback() }()
//
//	if err := tx.CreateOrder(ctx, order); err != nil {
//	    return err
//	}
//	for i := range items {
//	    items[i].OrderID = order.ID
//	    if err := tx.InsertLineItem(ctx, &items[i]); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// The pool holds a single connection. Do not call the non-transactional
// Storage methods while a transaction is open on the same store; use the
// Tx methods instead.
//
// # Build Tags
//
// The default build uses modernc.org/sqlite (pure Go). Building with the
// sqlite_cgo tag switches to github.com/mattn/go-sqlite3 (cgo).
package storage
