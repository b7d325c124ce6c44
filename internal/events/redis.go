package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"fabrika-backend/internal/logger"
)

type envelope struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	SentAt  int64  `json:"sent_at"`
}

type redisPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisPublisher(log *logger.Logger, addr, channel string) (Publisher, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis adresi boş")
	}
	if channel == "" {
		channel = "fabrika:events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisPublisher{
		log:     log.With("service", "RedisPublisher"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

// Publish: fire-and-forget. Serileştirme veya yayın hatası loglanır,
// çağırana asla dönmez; commit edilmiş bir işlem bildirimin arkasında
// başarısız sayılamaz.
func (p *redisPublisher) Publish(event string, payload any) {
	raw, err := json.Marshal(envelope{
		ID:      uuid.NewString(),
		Event:   event,
		Payload: payload,
		SentAt:  time.Now().Unix(),
	})
	if err != nil {
		p.log.Warn("event serileştirilemedi", "event", event, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		p.log.Warn("event yayınlanamadı", "event", event, "error", err)
	}
}

func (p *redisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
