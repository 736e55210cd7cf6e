// Package store persists uploaded tracks, their thinned versions and the
// thinning options chosen for them in Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/planbiir/gthin/internal/config"
	"github.com/planbiir/gthin/internal/format"
	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

// ErrNotFound is returned when a track or one of its parts is not stored.
var ErrNotFound = errors.New("track not found")

const keyPrefix = "gthin:track:"

const (
	partMeta    = "meta"
	partGeoJSON = "geojson"
	partThinned = "thinned"
	partOptions = "options"
)

// Record is the metadata kept for an uploaded track.
type Record struct {
	ID        string    `json:"id" msgpack:"id"`
	Name      string    `json:"name" msgpack:"name"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	Segments  int       `json:"segments" msgpack:"segments"`
	Points    int       `json:"points" msgpack:"points"`
}

func (r *Record) count(segments []track.Segment) {
	r.Segments = len(segments)
	r.Points = 0
	for _, seg := range segments {
		r.Points += len(seg.Points)
	}
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps a client. Every key is written with ttl; zero means no expiry.
func New(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect returns nil when no Redis address is configured.
func Connect(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func key(id, part string) string {
	return keyPrefix + id + ":" + part
}

// SaveTrack stores segments under a new id.
func (s *Redis) SaveTrack(ctx context.Context, name string, segments []track.Segment) (Record, error) {
	payload, err := format.EncodeGeoJSON(segments)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	rec.count(segments)

	meta, err := msgpack.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key(rec.ID, partMeta), meta, s.ttl)
	pipe.Set(ctx, key(rec.ID, partGeoJSON), payload, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, fmt.Errorf("failed to save track: %w", err)
	}
	return rec, nil
}

// UpdateTrack replaces the segments of an existing track. The stored
// thinned version is dropped since it no longer matches; options are kept.
func (s *Redis) UpdateTrack(ctx context.Context, id string, segments []track.Segment) (Record, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return Record{}, err
	}

	payload, err := format.EncodeGeoJSON(segments)
	if err != nil {
		return Record{}, err
	}
	rec.count(segments)

	meta, err := msgpack.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key(id, partMeta), meta, s.ttl)
	pipe.Set(ctx, key(id, partGeoJSON), payload, s.ttl)
	pipe.Del(ctx, key(id, partThinned))
	if _, err := pipe.Exec(ctx); err != nil {
		return Record{}, fmt.Errorf("failed to update track: %w", err)
	}
	return rec, nil
}

// Record returns the metadata of a stored track.
func (s *Redis) Record(ctx context.Context, id string) (Record, error) {
	data, err := s.get(ctx, id, partMeta)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

// LoadTrack returns the metadata and original segments of a track.
func (s *Redis) LoadTrack(ctx context.Context, id string) (Record, []track.Segment, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return Record{}, nil, err
	}

	segments, err := s.loadSegments(ctx, id, partGeoJSON)
	if err != nil {
		return Record{}, nil, err
	}
	return rec, segments, nil
}

// SaveThinned stores the processed segments of an existing track.
func (s *Redis) SaveThinned(ctx context.Context, id string, segments []track.Segment) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}

	payload, err := format.EncodeGeoJSON(segments)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(id, partThinned), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save thinned track: %w", err)
	}
	return nil
}

func (s *Redis) LoadThinned(ctx context.Context, id string) ([]track.Segment, error) {
	return s.loadSegments(ctx, id, partThinned)
}

// SaveOptions stores the thinning options chosen for an existing track.
func (s *Redis) SaveOptions(ctx context.Context, id string, spec thin.Spec) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}

	data, err := msgpack.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	if err := s.client.Set(ctx, key(id, partOptions), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save options: %w", err)
	}
	return nil
}

func (s *Redis) LoadOptions(ctx context.Context, id string) (thin.Spec, error) {
	data, err := s.get(ctx, id, partOptions)
	if err != nil {
		return thin.Spec{}, err
	}

	var spec thin.Spec
	if err := msgpack.Unmarshal(data, &spec); err != nil {
		return thin.Spec{}, fmt.Errorf("failed to decode options: %w", err)
	}
	return spec, nil
}

// DeleteTrack removes every key of a track.
func (s *Redis) DeleteTrack(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx,
		key(id, partMeta),
		key(id, partGeoJSON),
		key(id, partThinned),
		key(id, partOptions),
	).Result()
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Redis) loadSegments(ctx context.Context, id, part string) ([]track.Segment, error) {
	data, err := s.get(ctx, id, part)
	if err != nil {
		return nil, err
	}
	return format.DecodeGeoJSON(data)
}

func (s *Redis) get(ctx context.Context, id, part string) ([]byte, error) {
	data, err := s.client.Get(ctx, key(id, part)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s %s: %w", id, part, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", part, err)
	}
	return data, nil
}

func (s *Redis) exists(ctx context.Context, id string) error {
	n, err := s.client.Exists(ctx, key(id, partMeta)).Result()
	if err != nil {
		return fmt.Errorf("failed to check track: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
