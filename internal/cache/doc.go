// Package cache provides a generic least-recently-used cache.
//
//	c := cache.New[string, []int](256)
//	c.Set("key", []int{1, 2})
//	v, ok := c.Get("key")
//
// A Cache is safe for concurrent use and must not be copied.
package cache
