// Package server hosts the Fiber HTTP service that exposes the estimate cache
// to the aggregation pipeline: request IDs, access logging, panic recovery and
// a JSON error handler live here, while the route handlers themselves are in
// the routes subpackage. Keep exports narrow and accept explicit dependencies.
package server
