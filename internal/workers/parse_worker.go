package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/castlehq/checkmate/internal/parser"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/services"
	"github.com/castlehq/checkmate/internal/storage"
	"github.com/castlehq/checkmate/internal/utils"
)

const (
	DefaultStream = "resume:parse"
	DefaultGroup  = "resume-parsers"
)

// StreamQueue enqueues parse jobs onto the Redis stream the pool consumes.
type StreamQueue struct {
	rdb    *redis.Client
	stream string
}

func NewStreamQueue(rdb *redis.Client, stream string) *StreamQueue {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamQueue{rdb: rdb, stream: stream}
}

func (q *StreamQueue) Enqueue(ctx context.Context, resumeID uint) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{"resume_id": strconv.FormatUint(uint64(resumeID), 10)},
	}).Err()
}

// NoopQueue stands in when Redis is not configured; resumes stay unparsed.
type NoopQueue struct{}

func (NoopQueue) Enqueue(context.Context, uint) error { return nil }

// ParseWorkerPool consumes parse jobs from a Redis stream consumer group,
// extracts text from the stored file, and applies the enrichment exactly
// once through ResumeService.
type ParseWorkerPool struct {
	Redis      *redis.Client
	Resumes    pgrepo.ResumeRepository
	Apply      services.ResumeService
	Files      storage.Opener
	Parser     *parser.Parser
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *ParseWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Resumes == nil || p.Apply == nil || p.Files == nil {
		return errors.New("ParseWorkerPool missing dependency: Redis/Resumes/Apply/Files must be set")
	}
	if p.Parser == nil {
		p.Parser = parser.New()
	}
	if p.Stream == "" {
		p.Stream = DefaultStream
	}
	if p.Group == "" {
		p.Group = DefaultGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *ParseWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.claimStale(ctx, consumer)

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				if p.handleMsg(ctx, msg) {
					_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
				}
			}
		}
	}
}

// claimStale picks up jobs another consumer started but never acked, so a
// crashed worker's messages are retried rather than stuck pending.
func (p *ParseWorkerPool) claimStale(ctx context.Context, consumer string) {
	msgs, _, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   p.Stream,
		Group:    p.Group,
		Consumer: consumer,
		MinIdle:  time.Minute,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil {
		return
	}
	for _, msg := range msgs {
		if p.handleMsg(ctx, msg) {
			_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
		}
	}
}

// handleMsg reports whether the message is settled and may be acked.
// Transient failures (storage unavailable) return false so the job is
// redelivered; permanent ones are logged and acked.
func (p *ParseWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) bool {
	raw, _ := msg.Values["resume_id"].(string)
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return true // malformed job, drop it
	}
	resumeID := uint(id64)

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":  msg.ID,
		"resume_id": resumeID,
	})

	res, err := p.Resumes.GetByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			log.Warn("resume row gone, dropping parse job")
			return true
		}
		log.WithError(err).Warn("failed to load resume, will retry")
		return false
	}
	if len(res.ParsedContent) > 0 {
		return true // already enriched
	}

	f, err := p.Files.Open(ctx, res.FilePath)
	if err != nil {
		log.WithError(err).Warn("failed to open stored file, will retry")
		return false
	}
	defer f.Close()

	parsed, err := p.Parser.Parse(res.FileName, f)
	if err != nil {
		log.WithError(err).Error("text extraction failed, dropping parse job")
		return true
	}

	applied, err := p.Apply.ApplyParsed(ctx, resumeID, parsed)
	if err != nil {
		log.WithError(err).Warn("failed to store parsed content, will retry")
		return false
	}
	if !applied {
		log.Debug("parsed content already applied by another worker")
	} else {
		log.WithField("skills", len(parsed.Skills)).Info("resume parsed")
	}
	return true
}
