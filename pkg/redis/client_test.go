package redis

import (
	"context"
	"testing"
)

func TestBuildKeyNamespacing(t *testing.T) {
	c := &Client{}

	if got := c.RateLimitKey("login:email:jane@example.com"); got != "agm:rate_limit:login:email:jane@example.com" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := c.CounterKey("orders"); got != "agm:counter:orders" {
		t.Fatalf("unexpected counter key %q", got)
	}
	if got := c.DenylistKey("abc-123"); got != "agm:denylist:jti:abc-123" {
		t.Fatalf("unexpected denylist key %q", got)
	}
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.buildKey("rate_limit", "", "scope"); got != "agm:rate_limit:scope" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	c := &Client{}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on uninitialized client to error")
	}
	if _, err := c.Incr(context.Background(), "k"); err == nil {
		t.Fatal("expected incr on uninitialized client to error")
	}
}
