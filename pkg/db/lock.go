package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by Acquire when another run owns the lock.
var ErrLockHeld = errors.New("run lock held by another process")

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RunLock keeps two scheduled runs against the same drive from overlapping.
type RunLock struct {
	client *redis.Client
	key    string
	owner  string
	ttl    time.Duration
}

// RunLockKey names the lock for one site and drive.
func RunLockKey(site, drive string) string {
	return fmt.Sprintf("lock:spupload:%s:%s", site, drive)
}

// NewRunLock builds a lock owned by runID; an empty runID gets a fresh uuid.
func NewRunLock(client *redis.Client, key, runID string, ttl time.Duration) *RunLock {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &RunLock{client: client, key: key, owner: runID, ttl: ttl}
}

func (l *RunLock) Key() string { return l.key }

// Acquire sets the key if absent. It returns ErrLockHeld when another owner
// has it, or a wrapped Redis error.
func (l *RunLock) Acquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release deletes the key only if this lock still owns it.
func (l *RunLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err(); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
