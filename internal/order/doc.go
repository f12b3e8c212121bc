// Package order implements the order aggregate builder.
//
// A Builder collects line items for one order in memory, pricing each item
// from the catalog at the moment it is added, and keeps a running total in
// exact decimal arithmetic. Save writes the order row and every item row in
// a single transaction:
//
//	b := order.NewBuilder(store, store)
//	if _, err := b.AddLineItem(ctx, "widget", 2); err != nil {
//	    return err // validation or not-found, builder unchanged
//	}
//	o, err := b.Save(ctx, customerID, "2024-05-01")
//
// To edit a saved order, Load it, change the items and Save again. The
// stored items are deleted and the new set is inserted. Once saved, a
// builder is committed and refuses further changes.
package order
