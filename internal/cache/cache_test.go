package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache()
	defer func() { _ = c.Close() }()

	c.Set("key", "value", time.Minute)

	got, found := c.Get("key")
	if !found || got != "value" {
		t.Errorf("Get = %v, %v", got, found)
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache()
	defer func() { _ = c.Close() }()

	if _, found := c.Get("absent"); found {
		t.Errorf("Get on absent key reported found")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache()
	defer func() { _ = c.Close() }()

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("key"); found {
		t.Errorf("expired entry still returned")
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := NewCache()
	defer func() { _ = c.Close() }()

	c.Set("key", "old", time.Minute)
	c.Set("key", "new", time.Minute)

	got, _ := c.Get("key")
	if got != "new" {
		t.Errorf("Get = %v, want new", got)
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	defer func() { _ = c.Close() }()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()

	if _, found := c.Get("a"); found {
		t.Errorf("entry survived Clear")
	}
}
