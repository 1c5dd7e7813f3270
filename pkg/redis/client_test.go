package redis

import (
	"testing"

	"github.com/lokapasar/backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	t.Parallel()

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigUsesAddress(t *testing.T) {
	t.Parallel()

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("unexpected pool size %d", opts.PoolSize)
	}
}

func TestKeyBuilders(t *testing.T) {
	t.Parallel()

	c := &Client{}
	if got := c.IdempotencyKey("transactions", "abc"); got != "lp:idempotency:transactions:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.WebhookKey("PRT20250101AB", "settlement"); got != "lp:webhook:PRT20250101AB:settlement" {
		t.Fatalf("unexpected webhook key %q", got)
	}
}
