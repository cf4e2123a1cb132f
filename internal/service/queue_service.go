package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dub-pipeline-service/internal/entity"
)

// Queue is the durable hand-off between the orchestrator and the stage
// workers. Delivery is at-least-once: a claimed message that is never acked
// is eventually requeued by the reaper, so consumers must tolerate duplicates.
type Queue interface {
	Enqueue(ctx context.Context, stage entity.Stage, jobID string) error
	EnqueueDelayed(ctx context.Context, stage entity.Stage, jobID string, delay time.Duration) error
	ClaimBlocking(ctx context.Context, stage entity.Stage, timeout time.Duration) (string, error)
	Ack(ctx context.Context, stage entity.Stage, jobID string) error
	RequeueStale(ctx context.Context, maxPerStage int64) (int64, error)
	PromoteDue(ctx context.Context, max int64) (int64, error)
}

type lane struct {
	queueKey      string
	processingKey string
}

// redisStageQueue implements a reliable queue with one lane per pipeline
// stage using Redis lists, plus a sorted set for backoff-delayed retries.
// Claim: BRPOPLPUSH lane.queue -> lane.processing
// Ack:   LREM from the lane's processing list
// Retry: ZADD delayed (score = ready-at), promoted by the reaper loop
type redisStageQueue struct {
	rdb        *redis.Client
	delayedKey string
	lanes      map[entity.Stage]lane
}

func NewRedisStageQueue(rdb *redis.Client, keyPrefix string) Queue {
	lanes := make(map[entity.Stage]lane, len(entity.Stages()))
	for _, st := range entity.Stages() {
		lanes[st] = lane{
			queueKey:      fmt.Sprintf("%s:queue:%s", keyPrefix, st),
			processingKey: fmt.Sprintf("%s:processing:%s", keyPrefix, st),
		}
	}
	return &redisStageQueue{
		rdb:        rdb,
		delayedKey: keyPrefix + ":delayed",
		lanes:      lanes,
	}
}

func (q *redisStageQueue) lane(stage entity.Stage) (lane, error) {
	ln, ok := q.lanes[stage]
	if !ok {
		return lane{}, fmt.Errorf("unknown stage: %s", stage)
	}
	return ln, nil
}

func (q *redisStageQueue) Enqueue(ctx context.Context, stage entity.Stage, jobID string) error {
	ln, err := q.lane(stage)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, ln.queueKey, jobID).Err()
}

// EnqueueDelayed parks a message until its backoff elapses. Members are
// "stage jobID" so PromoteDue can route them back to the right lane.
func (q *redisStageQueue) EnqueueDelayed(ctx context.Context, stage entity.Stage, jobID string, delay time.Duration) error {
	if _, err := q.lane(stage); err != nil {
		return err
	}
	member := string(stage) + " " + jobID
	return q.rdb.ZAdd(ctx, q.delayedKey, redis.Z{
		Score:  float64(time.Now().Add(delay).UnixMilli()),
		Member: member,
	}).Err()
}

// ClaimBlocking atomically moves one message from the stage queue to its
// processing list. Returns redis.Nil on timeout.
func (q *redisStageQueue) ClaimBlocking(ctx context.Context, stage entity.Stage, timeout time.Duration) (string, error) {
	ln, err := q.lane(stage)
	if err != nil {
		return "", err
	}
	return q.rdb.BRPopLPush(ctx, ln.queueKey, ln.processingKey, timeout).Result()
}

func (q *redisStageQueue) Ack(ctx context.Context, stage entity.Stage, jobID string) error {
	ln, err := q.lane(stage)
	if err != nil {
		return err
	}
	return q.rdb.LRem(ctx, ln.processingKey, 1, jobID).Err()
}

// RequeueStale moves items from processing back to their queue, per stage.
// It's a simple reaper: anything a crashed worker left behind gets
// redelivered (at-least-once).
func (q *redisStageQueue) RequeueStale(ctx context.Context, maxPerStage int64) (int64, error) {
	var moved int64

	for _, st := range entity.Stages() {
		ln := q.lanes[st]
		for i := int64(0); i < maxPerStage; i++ {
			id, err := q.rdb.RPopLPush(ctx, ln.processingKey, ln.queueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					break
				}
				return moved, err
			}
			if id != "" {
				moved++
			}
		}
	}

	return moved, nil
}

// PromoteDue moves delayed messages whose backoff has elapsed onto their
// stage queue.
func (q *redisStageQueue) PromoteDue(ctx context.Context, max int64) (int64, error) {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())
	members, err := q.rdb.ZRangeByScore(ctx, q.delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: max,
	}).Result()
	if err != nil {
		return 0, err
	}

	var moved int64
	for _, m := range members {
		stage, jobID, ok := strings.Cut(m, " ")
		if !ok {
			_ = q.rdb.ZRem(ctx, q.delayedKey, m).Err()
			continue
		}
		// remove first so two reapers never promote the same member twice
		n, err := q.rdb.ZRem(ctx, q.delayedKey, m).Result()
		if err != nil {
			return moved, err
		}
		if n == 0 {
			continue
		}
		if err := q.Enqueue(ctx, entity.Stage(stage), jobID); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
