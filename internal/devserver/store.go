package devserver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/obslog"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrFigureNotFound = errors.New("figure not found")
	ErrIllegalMove    = errors.New("illegal move")
	ErrConflict       = errors.New("concurrent update")
)

const seqKey = "dev:game:seq"

func gameKey(id int64) string { return "dev:game:" + strconv.FormatInt(id, 10) }

// Store keeps games in Redis as JSON records.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl, now: time.Now}
}

// Connect opens and pings a Redis client for url.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for dev server")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Create(ctx context.Context) (*Record, error) {
	id, err := s.rdb.Incr(ctx, seqKey).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate game id: %w", err)
	}
	rec := newRecord(id, s.now())
	if err := s.save(ctx, rec); err != nil {
		return nil, err
	}
	obslog.L().Info("dev_game_create", zap.Int64("game_id", id), zap.Int("figures", len(rec.Figures)))
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode game %d: %w", id, err)
	}
	return &rec, nil
}

// Move applies from→to under WATCH so two writers cannot both extend the same
// move list.
func (s *Store) Move(ctx context.Context, id int64, from, to chessdto.Coord) (*Record, error) {
	key := gameKey(id)
	var out *Record
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}
		var cur Record
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode game %d: %w", id, err)
		}
		game, err := replay(&cur)
		if err != nil {
			return err
		}
		if err := applyMove(&cur, game, from, to, s.now()); err != nil {
			return err
		}
		next, err := json.Marshal(&cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = &cur
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	last := out.MovesUCI[len(out.MovesUCI)-1]
	obslog.L().Info("dev_game_move",
		zap.Int64("game_id", id),
		zap.String("uci", last),
		zap.Int("ply", len(out.MovesUCI)),
		zap.String("outcome", out.Outcome),
	)
	return out, nil
}

func (s *Store) save(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, gameKey(rec.ID), raw, s.ttl).Err()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: u.Host, Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{ServerName: u.Hostname(), MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
