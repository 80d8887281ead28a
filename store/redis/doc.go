// Package redis provides a Redis-backed store.RunStore, for runs with many
// short-lived tasks updating status in quick succession.
//
//	s := redis.New(redis.Options{Addr: "localhost:6379"})
package redis
