package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"

	"gopherai-insight/internal/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisv9.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTurnTracker_GuardsOneTurnPerUser(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	turns := NewTurnTracker(client, time.Minute)

	if state, err := turns.State(ctx, 1); err != nil || state != model.TurnIdle {
		t.Fatalf("fresh user: %s, %v", state, err)
	}
	if ok, err := turns.Begin(ctx, 1); err != nil || !ok {
		t.Fatalf("first begin: %v, %v", ok, err)
	}
	if err := turns.Advance(ctx, 1, model.TurnAwaitingCompletion); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if ok, err := turns.Begin(ctx, 1); err != nil || ok {
		t.Fatalf("second begin must be refused: %v, %v", ok, err)
	}
	if state, _ := turns.State(ctx, 1); state != model.TurnAwaitingCompletion {
		t.Fatalf("a refused begin must not reset the state, got %s", state)
	}
	if ok, _ := turns.Begin(ctx, 2); !ok {
		t.Fatal("other users are not blocked")
	}
	if ttl := mr.TTL("chat:turn:1"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("turn key must carry the ttl, got %s", ttl)
	}

	if err := turns.End(ctx, 1); err != nil {
		t.Fatalf("end: %v", err)
	}
	if state, _ := turns.State(ctx, 1); state != model.TurnIdle {
		t.Fatalf("expected idle after end, got %s", state)
	}
	if err := turns.Advance(ctx, 1, model.TurnSendingAssistant); err != nil {
		t.Fatalf("advance after end: %v", err)
	}
	if mr.Exists("chat:turn:1") {
		t.Fatal("advancing a released turn must not claim it again")
	}
	if ok, _ := turns.Begin(ctx, 1); !ok {
		t.Fatal("a released turn can be claimed again")
	}
}

func TestTurnTracker_ExpiredTurnIsReleased(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	turns := NewTurnTracker(client, 10*time.Second)

	if ok, _ := turns.Begin(ctx, 1); !ok {
		t.Fatal("begin refused")
	}
	mr.FastForward(11 * time.Second)
	if ok, _ := turns.Begin(ctx, 1); !ok {
		t.Fatal("a stuck turn must expire")
	}
}

func TestTurnTracker_UnknownStateReadsIdle(t *testing.T) {
	mr, client := newTestRedis(t)
	if err := mr.Set("chat:turn:1", "garbage"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if state, err := NewTurnTracker(client, time.Minute).State(context.Background(), 1); err != nil || state != model.TurnIdle {
		t.Fatalf("expected idle, got %s, %v", state, err)
	}
}

func TestHistoryCache_DirtyMarkerBlocksStaleRefill(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	history := NewHistoryCache(client, time.Minute, 5*time.Second)

	if _, hit, err := history.Get(ctx, 1); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	name := "people"
	messages := []model.ChatMessage{
		{ID: "m-1", UserID: 1, Content: "hi", IsUser: true, DatasetContext: &name},
		{ID: "m-2", UserID: 1, Content: "hello"},
	}
	if err := history.Set(ctx, 1, messages); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, hit, err := history.Get(ctx, 1)
	if err != nil || !hit {
		t.Fatalf("expected a hit: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m-1" || got[0].DatasetContext == nil || *got[0].DatasetContext != "people" || got[1].IsUser {
		t.Fatalf("unexpected cached messages: %+v", got)
	}

	if err := history.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, hit, _ := history.Get(ctx, 1); hit {
		t.Fatal("an invalidated log must miss")
	}
	if err := history.Set(ctx, 1, messages[:1]); err != nil {
		t.Fatalf("set while dirty: %v", err)
	}
	if mr.Exists("chat:history:1") {
		t.Fatal("a read that raced a write must not refill the cache")
	}

	mr.FastForward(6 * time.Second)
	if err := history.Set(ctx, 1, messages); err != nil {
		t.Fatalf("set after settle: %v", err)
	}
	if _, hit, _ := history.Get(ctx, 1); !hit {
		t.Fatal("the cache refills once the marker expires")
	}
}

func TestHistoryCache_DirtyMarkerHidesExistingEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	history := NewHistoryCache(client, time.Minute, 5*time.Second)

	if err := history.Set(ctx, 1, []model.ChatMessage{{ID: "m-1", UserID: 1}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mr.Set("chat:history:dirty:1", "1"); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
	if _, hit, _ := history.Get(ctx, 1); hit {
		t.Fatal("a dirty log must miss even when an entry exists")
	}
}

func TestTokenDenylist(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	denylist := NewTokenDenylist(client)

	if err := denylist.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := denylist.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatal("expected jti-1 to be revoked")
	}
	if revoked, _ := denylist.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatal("jti-2 was never revoked")
	}
	if err := denylist.Revoke(ctx, "jti-3", 0); err != nil || mr.Exists("auth:revoked:jti-3") {
		t.Fatalf("an expired token needs no entry: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if revoked, _ := denylist.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatal("entries expire with the token")
	}
}
