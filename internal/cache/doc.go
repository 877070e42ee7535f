// Package cache keeps complete answer envelopes keyed by a hash of the
// normalized query. Backends are interchangeable; any backend failure is
// reported as a miss (on read) or a false result (on write), never as a
// request error.
package cache
