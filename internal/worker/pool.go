package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/service"
)

// Pool runs the workers of one pipeline stage. Each stage gets its own pool
// pulling from its own queue lane; a slow muxing job never starves STT.
type Pool struct {
	queue      service.Queue
	stage      entity.Stage
	processor  *Processor
	workers    int
	claimDelay time.Duration
	log        *logrus.Logger
}

func NewPool(queue service.Queue, stage entity.Stage, processor *Processor, workers int, log *logrus.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		queue:      queue,
		stage:      stage,
		processor:  processor,
		workers:    workers,
		claimDelay: 5 * time.Second,
		log:        log,
	}
}

func (p *Pool) Run(ctx context.Context) {
	p.log.WithFields(logrus.Fields{"stage": p.stage, "workers": p.workers}).
		Info("worker pool started")

	jobCh := make(chan string)

	for i := 0; i < p.workers; i++ {
		go func(n int) {
			for jobID := range jobCh {
				if err := p.processor.Process(ctx, jobID); err != nil {
					p.log.WithFields(logrus.Fields{
						"stage": p.stage, "worker": n, "job_id": jobID,
					}).WithError(err).Error("process failed")
				}

				// Ack regardless: the job row is settled (or the crash path
				// already lost it, in which case the reaper redelivers).
				if err := p.queue.Ack(ctx, p.stage, jobID); err != nil {
					p.log.WithFields(logrus.Fields{
						"stage": p.stage, "worker": n, "job_id": jobID,
					}).WithError(err).Error("ack failed")
				}
			}
		}(i + 1)
	}

	// Listener: atomically claim from queue -> processing
	for {
		select {
		case <-ctx.Done():
			close(jobCh)
			p.log.WithField("stage", p.stage).Info("worker pool stopped")
			return
		default:
			jobID, err := p.queue.ClaimBlocking(ctx, p.stage, p.claimDelay)
			if err != nil {
				// timeout / redis.Nil / ctx cancel
				continue
			}
			select {
			case jobCh <- jobID:
			case <-ctx.Done():
				close(jobCh)
				return
			}
		}
	}
}
