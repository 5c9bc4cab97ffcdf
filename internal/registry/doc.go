// Package registry is the Companies House REST client used by the resolver.
//
// Requests are paced by a shared token bucket, followed by a fixed delay, and
// bounded by a per-request timeout. Rate limits and gateway failures are
// retried with exponential backoff. A 404 maps to ErrNotFound; every other
// failure is tagged with a services marker so callers can classify it.
// Successful bodies can be stored through the optional Cache.
package registry
