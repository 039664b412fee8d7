// Package archive provides SQLite-backed storage for recorded HTTP
// exchanges, so runs can replay captured traffic instead of depending
// on a live service.
//
// A recording session captures one row per request/response pair,
// keyed two ways for replay lookup:
//   - request_hash: content-addressed identity over method, URL, and
//     request body, for exact matches
//   - (method, url): positional fallback when bodies differ, for
//     example a registration form replayed with a regenerated username
//
// All ordering uses seq (a per-session logical counter), never
// timestamps, so replay order is deterministic regardless of wall
// time. Queries order by seq ASC, id ASC.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: exchanges cannot outlive their session
package archive
