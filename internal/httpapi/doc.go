// Package httpapi exposes the order desk over a JSON REST API built on chi.
//
// Routes:
//
//	GET/POST          /customers          GET/PUT/DELETE /customers/{id}
//	GET/POST          /products           GET/PUT/DELETE /products/{id}
//	GET               /orders?from=&to=&customer_id=&limit=
//	GET/DELETE        /orders/{id}
//	POST              /orders/{id}/draft  open an edit draft for a saved order
//	POST              /drafts             open an empty draft
//	GET/DELETE        /drafts/{id}
//	POST              /drafts/{id}/items  {"product": "widget", "quantity": 2}
//	DELETE            /drafts/{id}/items/{index}
//	POST              /drafts/{id}/save   {"customer_id": 1, "date": "2024-05-01"}
//	GET               /dashboard
//	POST              /reports/export     {"formats": ["csv", "pdf"]}
//	GET               /reports/summary
//	GET               /history?limit=
//
// Failures are answered as {"error": message, "kind": kind}. Validation
// maps to 400, not_found to 404, persistence to 500 and external_service
// to 502. A busy draft or a repeated save answers 409.
package httpapi
