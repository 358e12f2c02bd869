package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), srv
}

func TestAcquireLeadLock(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()
	leadID := uuid.New()

	acquired, release, err := locker.AcquireLeadLock(ctx, leadID, time.Minute)
	if err != nil {
		t.Fatalf("AcquireLeadLock: %v", err)
	}
	if !acquired {
		t.Fatalf("expected to acquire a fresh lock")
	}

	// Second acquisition while held must fail without error.
	again, _, err := locker.AcquireLeadLock(ctx, leadID, time.Minute)
	if err != nil {
		t.Fatalf("AcquireLeadLock (held): %v", err)
	}
	if again {
		t.Errorf("lock acquired twice")
	}

	release()

	// Released lock is acquirable again.
	reacquired, release2, err := locker.AcquireLeadLock(ctx, leadID, time.Minute)
	if err != nil {
		t.Fatalf("AcquireLeadLock (after release): %v", err)
	}
	if !reacquired {
		t.Errorf("expected to reacquire after release")
	}
	release2()
}

func TestAcquireLeadLockIsPerLead(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	a, releaseA, err := locker.AcquireLeadLock(ctx, uuid.New(), time.Minute)
	if err != nil || !a {
		t.Fatalf("first lock: acquired=%v err=%v", a, err)
	}
	defer releaseA()

	b, releaseB, err := locker.AcquireLeadLock(ctx, uuid.New(), time.Minute)
	if err != nil || !b {
		t.Fatalf("second lead must lock independently: acquired=%v err=%v", b, err)
	}
	defer releaseB()
}

func TestReleaseIgnoresStolenLock(t *testing.T) {
	locker, srv := newTestLocker(t)
	ctx := context.Background()
	leadID := uuid.New()

	acquired, release, err := locker.AcquireLeadLock(ctx, leadID, time.Minute)
	if err != nil || !acquired {
		t.Fatalf("AcquireLeadLock: acquired=%v err=%v", acquired, err)
	}

	// Simulate TTL expiry and re-acquisition by another process.
	srv.FastForward(2 * time.Minute)
	stolen, _, err := locker.AcquireLeadLock(ctx, leadID, time.Minute)
	if err != nil || !stolen {
		t.Fatalf("expected lock after expiry: acquired=%v err=%v", stolen, err)
	}

	// Releasing the stale handle must not free the new holder's lock.
	release()
	held, _, err := locker.AcquireLeadLock(ctx, leadID, time.Minute)
	if err != nil {
		t.Fatalf("AcquireLeadLock: %v", err)
	}
	if held {
		t.Errorf("stale release freed a lock owned by another holder")
	}
}
