// Package billing contains the domain model for subscription reconciliation:
// accounts resolved from provider customer ids, products with derived customer
// and sales counters, customer references marking current entitlement, and the
// pure classifier that maps authoritative subscription status to a
// reconciliation action.
package billing
