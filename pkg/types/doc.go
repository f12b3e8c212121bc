// Package types provides the domain types shared by the store, the order
// builder and the front ends.
//
// # Core Types
//
// Customer and Product are plain records edited through CRUD. Order owns its
// LineItems; each line item keeps the product name and unit price that were
// current when it was added, so later catalog edits never rewrite history:
//
//	item := types.LineItem{
//	    ProductName: "widget",
//	    Quantity:    2,
//	    UnitPrice:   decimal.RequireFromString("3.50"),
//	}
//	item.Subtotal() // 7.00
//
// Money is a decimal.Decimal everywhere. Dates are ISO 8601 calendar dates
// (YYYY-MM-DD) kept as strings, validated with ParseDate.
//
// # Error Kinds
//
// Failures are classified by Kind:
//
//	KindValidation       bad input, nothing was written
//	KindNotFound         referenced customer, product or order is gone
//	KindPersistence      store failure, the write was rolled back
//	KindExternalService  summarization provider failed
//
// Use KindOf or IsKind to branch on the kind and errors.Is for the
// specific sentinel:
//
//	if types.IsKind(err, types.KindValidation) && errors.Is(err, types.ErrEmptyOrder) {
//	    // re-prompt
//	}
package types
