package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"log"

	"github.com/go-redis/redis/v8"
)

// Redis holds advisory locks on raffle numbers while a checkout is in
// flight. Locks carry a TTL so an abandoned checkout frees its numbers;
// the partial unique index in Postgres stays the real guarantee.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

func lockKey(raffleID string, number int) string {
	return fmt.Sprintf("number_lock:%s:%d", raffleID, number)
}

// getNumberLockDuration returns the number lock duration from environment variables or the default value
func (r *Redis) getNumberLockDuration() time.Duration {
	defaultDuration := 5 * time.Minute

	lockTTLStr := os.Getenv("NUMBER_LOCK_TTL_MINUTES")
	if lockTTLStr == "" {
		return defaultDuration
	}

	lockTTLMin, err := strconv.Atoi(lockTTLStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid NUMBER_LOCK_TTL_MINUTES value '" + lockTTLStr + "', using default 5 minutes")
		return defaultDuration
	}

	return time.Duration(lockTTLMin) * time.Minute
}

// CheckNumberAvailability reports whether a number is currently unlocked
// without taking the lock.
func (r *Redis) CheckNumberAvailability(raffleID string, number int) (bool, error) {
	_, err := r.Client.Get(context.Background(), lockKey(raffleID, number)).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// LockNumber takes the advisory lock on one number for the given order.
func (r *Redis) LockNumber(raffleID string, number int, orderID string) (bool, error) {
	lockDuration := r.getNumberLockDuration()
	ok, err := r.Client.SetNX(context.Background(), lockKey(raffleID, number), orderID, lockDuration).Result()
	return ok, err
}

// UnlockNumber releases the lock if this order still holds it.
func (r *Redis) UnlockNumber(raffleID string, number int, orderID string) error {
	ctx := context.Background()
	key := lockKey(raffleID, number)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already unlocked
	}
	if err != nil {
		return err
	}
	if val == orderID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

// LockNumbers locks the whole selection or nothing: any number already
// held rolls back the locks taken so far.
func (r *Redis) LockNumbers(raffleID string, numbers []int, orderID string) (bool, error) {
	locked := []int{}
	for _, n := range numbers {
		ok, err := r.LockNumber(raffleID, n, orderID)
		if err != nil {
			for _, l := range locked {
				_ = r.UnlockNumber(raffleID, l, orderID)
			}
			return false, err
		}
		if !ok {
			for _, l := range locked {
				_ = r.UnlockNumber(raffleID, l, orderID)
			}
			return false, nil
		}
		locked = append(locked, n)
	}
	return true, nil
}

// UnlockNumbers releases all locks held by an order, returning the first
// error seen.
func (r *Redis) UnlockNumbers(raffleID string, numbers []int, orderID string) error {
	var firstErr error
	for _, n := range numbers {
		err := r.UnlockNumber(raffleID, n, orderID)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
