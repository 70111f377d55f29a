package auth

import "testing"

func TestPickStable(t *testing.T) {
	ring := NewShardRing([]string{"token-shard-1", "token-shard-2", "token-shard-3"}, 50)
	first := ring.Pick("some-token")
	for i := 0; i < 100; i++ {
		if got := ring.Pick("some-token"); got != first {
			t.Fatalf("Pick not stable: %s != %s", got, first)
		}
	}
}

func TestPickDistribution(t *testing.T) {
	ring := NewShardRing([]string{"token-shard-1", "token-shard-2", "token-shard-3"}, 50)
	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		shard := ring.Pick("token-" + string(rune('a'+i%26)) + string(rune('0'+i%10)))
		seen[shard]++
	}
	if len(seen) < 2 {
		t.Errorf("expected tokens spread over multiple shards, got %v", seen)
	}
}

func TestEmptyShardsFallback(t *testing.T) {
	ring := NewShardRing(nil, 0)
	if shard := ring.Pick("anything"); shard == "" {
		t.Error("empty ring should still return the default shard")
	}
}

func TestAddIdempotent(t *testing.T) {
	ring := NewShardRing([]string{"token-shard-1"}, 10)
	before := len(ring.hashes)
	ring.Add("token-shard-1")
	if len(ring.hashes) != before {
		t.Errorf("re-adding the same shard changed virtual node count: %d -> %d", before, len(ring.hashes))
	}
}
