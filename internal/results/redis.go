package results

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
)

const defaultKeyPrefix = "pathbench"

// RedisStore хранит сводки в хэшах, замеры в списках.
//
//	<prefix>:summary:<size>:<case>  hash
//	<prefix>:samples:<size>:<case>  list, по порядку запусков
//	<prefix>:index                  set ключей сводок
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "redis ping failed").
			WithDetails("addr", cfg.Address())
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreFromClient оборачивает готовый клиент
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) summaryKey(k Key) string {
	return s.prefix + ":summary:" + k.Size + ":" + k.Case
}

func (s *RedisStore) samplesKey(k Key) string {
	return s.prefix + ":samples:" + k.Size + ":" + k.Case
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":index"
}

// SaveSummary перезаписывает хэш сводки и добавляет его в индекс
func (s *RedisStore) SaveSummary(ctx context.Context, sum Summary) error {
	key := s.summaryKey(sum.Key())
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, summaryFields(sum))
		pipe.SAdd(ctx, s.indexKey(), key)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to save summary").
			WithDetails("key", key)
	}
	return nil
}

// SaveSamples заменяет список замеров ключа
func (s *RedisStore) SaveSamples(ctx context.Context, k Key, samples []float64) error {
	key := s.samplesKey(k)
	values := make([]any, len(samples))
	for i, v := range samples {
		values[i] = strconv.FormatFloat(v, 'f', samplePrecision, 64)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to save samples").
			WithDetails("key", key)
	}
	return nil
}

// ListSummaries читает все сводки из индекса. Истёкшие хэши убираются из индекса.
func (s *RedisStore) ListSummaries(ctx context.Context) ([]Summary, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to read summary index")
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.HGetAll(ctx, k)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to read summaries")
	}

	var stale []any
	out := make([]Summary, 0, len(keys))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			stale = append(stale, keys[i])
			continue
		}
		sum, err := parseSummaryFields(fields)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "malformed summary hash").
				WithDetails("key", keys[i])
		}
		out = append(out, sum)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to prune summary index")
		}
	}
	return out, nil
}

// ListSamples возвращает замеры ключа
func (s *RedisStore) ListSamples(ctx context.Context, k Key) ([]float64, error) {
	vals, err := s.client.LRange(ctx, s.samplesKey(k), 0, -1).Result()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to read samples")
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "malformed sample").
				WithDetails("key", s.samplesKey(k))
		}
		out[i] = f
	}
	return out, nil
}

// Close закрывает клиент
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func summaryFields(s Summary) map[string]any {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]any{
		"size":        s.Size,
		"case":        s.Case,
		"mean":        f(s.Mean),
		"max":         f(s.Max),
		"min":         f(s.Min),
		"total":       f(s.Total),
		"stddev":      f(s.StdDev),
		"repetitions": strconv.Itoa(s.Repetitions),
		"vertices":    strconv.Itoa(s.Vertices),
		"edges":       strconv.Itoa(s.Edges),
		"run_id":      s.RunID,
		"updated_at":  s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseSummaryFields(m map[string]string) (Summary, error) {
	sum := Summary{Size: m["size"], Case: m["case"], RunID: m["run_id"]}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"mean", &sum.Mean},
		{"max", &sum.Max},
		{"min", &sum.Min},
		{"total", &sum.Total},
		{"stddev", &sum.StdDev},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(m[f.name], 64)
		if err != nil {
			return Summary{}, err
		}
		*f.dst = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"repetitions", &sum.Repetitions},
		{"vertices", &sum.Vertices},
		{"edges", &sum.Edges},
	}
	for _, f := range ints {
		if m[f.name] == "" {
			continue
		}
		v, err := strconv.Atoi(m[f.name])
		if err != nil {
			return Summary{}, err
		}
		*f.dst = v
	}

	if ts := m["updated_at"]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Summary{}, err
		}
		sum.UpdatedAt = t
	}
	return sum, nil
}
