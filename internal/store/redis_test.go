package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/planbiir/gthin/internal/config"
	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), srv
}

func sampleSegments() []track.Segment {
	base := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	return []track.Segment{{
		Source: "ride.gpx",
		Name:   "Ride",
		Points: []track.Point{
			track.NewPoint(7.0, 46.0, base),
			track.NewPoint(7.001, 46.001, time.Time{}),
			track.NewPoint(7.002, 46.002, base.Add(time.Minute)),
		},
	}}
}

func TestSaveAndLoadTrack(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	rec, err := s.SaveTrack(ctx, "Ride", sampleSegments())
	if err != nil {
		t.Fatalf("SaveTrack failed: %v", err)
	}
	if rec.ID == "" || rec.Segments != 1 || rec.Points != 3 {
		t.Fatalf("unexpected record %+v", rec)
	}

	loaded, segments, err := s.LoadTrack(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadTrack failed: %v", err)
	}
	if loaded.ID != rec.ID || loaded.Name != "Ride" || !loaded.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("record mismatch: %+v vs %+v", loaded, rec)
	}
	if len(segments) != 1 || len(segments[0].Points) != 3 {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if segments[0].Points[1].HasTime() {
		t.Fatalf("missing timestamp should survive storage")
	}
}

func TestMissingTrack(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	if _, _, err := s.LoadTrack(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveOptions(ctx, "nope", thin.Spec{Kind: thin.KindNone}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for options, got %v", err)
	}
	if err := s.SaveThinned(ctx, "nope", sampleSegments()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for thinned, got %v", err)
	}
	if err := s.DeleteTrack(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for delete, got %v", err)
	}
}

func TestOptionsAndThinned(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	rec, err := s.SaveTrack(ctx, "Ride", sampleSegments())
	if err != nil {
		t.Fatalf("SaveTrack failed: %v", err)
	}

	if _, err := s.LoadOptions(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no options yet, got %v", err)
	}

	spec := thin.Spec{Kind: thin.KindDistance, Value: 25}
	if err := s.SaveOptions(ctx, rec.ID, spec); err != nil {
		t.Fatalf("SaveOptions failed: %v", err)
	}
	got, err := s.LoadOptions(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if got != spec {
		t.Fatalf("expected %+v, got %+v", spec, got)
	}

	thinned := sampleSegments()
	thinned[0].Points = []track.Point{thinned[0].Points[0], thinned[0].Points[2]}
	if err := s.SaveThinned(ctx, rec.ID, thinned); err != nil {
		t.Fatalf("SaveThinned failed: %v", err)
	}
	loaded, err := s.LoadThinned(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadThinned failed: %v", err)
	}
	if len(loaded) != 1 || len(loaded[0].Points) != 2 {
		t.Fatalf("unexpected thinned segments %+v", loaded)
	}

	if err := s.DeleteTrack(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteTrack failed: %v", err)
	}
	if _, err := s.LoadThinned(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected thinned to be deleted, got %v", err)
	}
}

func TestUpdateTrack(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	rec, err := s.SaveTrack(ctx, "Ride", sampleSegments())
	if err != nil {
		t.Fatalf("SaveTrack failed: %v", err)
	}
	spec := thin.Spec{Kind: thin.KindSequence, Value: 2}
	if err := s.SaveOptions(ctx, rec.ID, spec); err != nil {
		t.Fatalf("SaveOptions failed: %v", err)
	}
	if err := s.SaveThinned(ctx, rec.ID, sampleSegments()); err != nil {
		t.Fatalf("SaveThinned failed: %v", err)
	}

	second := sampleSegments()[0]
	second.Source = "evening.gpx"
	updated, err := s.UpdateTrack(ctx, rec.ID, append(sampleSegments(), second))
	if err != nil {
		t.Fatalf("UpdateTrack failed: %v", err)
	}
	if updated.ID != rec.ID || updated.Name != "Ride" || !updated.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("identity must survive an update: %+v", updated)
	}
	if updated.Segments != 2 || updated.Points != 6 {
		t.Fatalf("expected recounted record, got %+v", updated)
	}

	_, segments, err := s.LoadTrack(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadTrack failed: %v", err)
	}
	if len(segments) != 2 || segments[1].Source != "evening.gpx" {
		t.Fatalf("unexpected segments after update %+v", segments)
	}
	if _, err := s.LoadThinned(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale thinned track to be dropped, got %v", err)
	}
	if got, err := s.LoadOptions(ctx, rec.ID); err != nil || got != spec {
		t.Fatalf("expected options to be kept, got %+v %v", got, err)
	}

	if _, err := s.UpdateTrack(ctx, "nope", sampleSegments()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTTLApplied(t *testing.T) {
	s, srv := newTestStore(t, time.Hour)
	ctx := context.Background()

	rec, err := s.SaveTrack(ctx, "Ride", sampleSegments())
	if err != nil {
		t.Fatalf("SaveTrack failed: %v", err)
	}
	if ttl := srv.TTL(key(rec.ID, partMeta)); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	srv.FastForward(2 * time.Hour)
	if _, _, err := s.LoadTrack(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired track, got %v", err)
	}
}

func TestConnect(t *testing.T) {
	if Connect(config.Config{}) != nil {
		t.Fatalf("expected nil client without address")
	}
	client := Connect(config.Config{RedisAddr: "localhost:6379", RedisDB: 2})
	if client == nil {
		t.Fatalf("expected client")
	}
	defer client.Close()
	if client.Options().DB != 2 {
		t.Fatalf("expected db 2")
	}
}
