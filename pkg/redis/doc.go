// Package redis connects to the Redis instance used for request-path
// caching (unread notification counters) with startup retry and health
// checking.
package redis
