package redis_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
	redissaver "github.com/mohammad-safakhou/paperchat/internal/memory/redis"
)

func TestRedisSaverRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	redisC, err := tcRedis.RunContainer(ctx)
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	defer func() {
		_ = redisC.Terminate(ctx)
	}()

	uri, err := redisC.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis uri: %v", err)
	}
	addr := strings.TrimPrefix(uri, "redis://")
	host, port, ok := strings.Cut(addr, ":")
	if !ok {
		t.Fatalf("unexpected redis uri: %s", uri)
	}

	client, err := redissaver.Conn(ctx, memory.RedisConfig{
		Host:    host,
		Port:    port,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("redis conn: %v", err)
	}
	defer client.Close()

	saver := redissaver.New(client, time.Hour)

	st := state.NewInitialState([]state.Message{state.Human("what is attention?")}, "s1")
	st.FinalAnswer = "answer"
	st.SetConfidence(0.8)

	if err := saver.Put(ctx, "s1", st); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok2, err := saver.Exists(ctx, "s1")
	if err != nil || !ok2 {
		t.Fatalf("expected checkpoint to exist: ok=%v err=%v", ok2, err)
	}

	got, err := saver.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FinalAnswer != "answer" || got.ConfidenceScore == nil || *got.ConfidenceScore != 0.8 {
		t.Fatalf("unexpected state after round trip: %+v", got)
	}

	if err := saver.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := saver.Get(ctx, "s1"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
