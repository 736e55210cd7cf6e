package tracks

import (
	"context"
	"errors"
	"fmt"

	"github.com/planbiir/gthin/internal/edit"
	"github.com/planbiir/gthin/internal/format"
	"github.com/planbiir/gthin/internal/gpx"
	"github.com/planbiir/gthin/internal/store"
	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

var ErrInvalidInput = errors.New("invalid input")

// Store is the persistence the service needs; *store.Redis implements it.
type Store interface {
	SaveTrack(ctx context.Context, name string, segments []track.Segment) (store.Record, error)
	UpdateTrack(ctx context.Context, id string, segments []track.Segment) (store.Record, error)
	Record(ctx context.Context, id string) (store.Record, error)
	LoadTrack(ctx context.Context, id string) (store.Record, []track.Segment, error)
	SaveThinned(ctx context.Context, id string, segments []track.Segment) error
	LoadThinned(ctx context.Context, id string) ([]track.Segment, error)
	SaveOptions(ctx context.Context, id string, spec thin.Spec) error
	LoadOptions(ctx context.Context, id string) (thin.Spec, error)
	DeleteTrack(ctx context.Context, id string) error
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// Thin runs a policy over a bare point list. It needs no store.
func (s *Service) Thin(req ThinRequest) (thin.Result, error) {
	p, err := req.Policy.Policy()
	if err != nil {
		return thin.Result{}, err
	}
	return thin.Apply(req.Points, p)
}

// Upload decodes a GPX or GeoJSON body and stores its segments.
func (s *Service) Upload(ctx context.Context, name string, body []byte) (TrackResponse, error) {
	segments, err := decodeUpload(name, body)
	if err != nil {
		return TrackResponse{}, err
	}
	for _, seg := range segments {
		if err := track.Validate(seg.Points); err != nil {
			return TrackResponse{}, err
		}
	}

	rec, err := s.store.SaveTrack(ctx, name, segments)
	if err != nil {
		return TrackResponse{}, err
	}
	return newTrackResponse(rec, segments), nil
}

func (s *Service) Get(ctx context.Context, id string) (TrackResponse, error) {
	rec, segments, err := s.store.LoadTrack(ctx, id)
	if err != nil {
		return TrackResponse{}, err
	}
	return newTrackResponse(rec, segments), nil
}

// AddFile decodes one more GPX or GeoJSON file into a stored track. Files
// are kept ordered by their earliest timestamp, undated files last, and a
// stored thinning is applied again.
func (s *Service) AddFile(ctx context.Context, id, name string, body []byte) (TrackResponse, error) {
	added, err := decodeUpload(name, body)
	if err != nil {
		return TrackResponse{}, err
	}
	for _, seg := range added {
		if err := track.Validate(seg.Points); err != nil {
			return TrackResponse{}, err
		}
	}

	if name == "" {
		name = added[0].Source
	}

	_, segments, err := s.store.LoadTrack(ctx, id)
	if err != nil {
		return TrackResponse{}, err
	}
	return s.update(ctx, id, edit.AddFile(segments, name, added))
}

// RemoveFile drops the file at index, as listed in TrackResponse.Files.
func (s *Service) RemoveFile(ctx context.Context, id string, index int) (TrackResponse, error) {
	_, segments, err := s.store.LoadTrack(ctx, id)
	if err != nil {
		return TrackResponse{}, err
	}

	segments, err = edit.RemoveFile(segments, index)
	if err != nil {
		return TrackResponse{}, err
	}
	return s.update(ctx, id, segments)
}

func (s *Service) update(ctx context.Context, id string, segments []track.Segment) (TrackResponse, error) {
	rec, err := s.store.UpdateTrack(ctx, id, segments)
	if err != nil {
		return TrackResponse{}, err
	}

	spec, err := s.store.LoadOptions(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return TrackResponse{}, err
	default:
		p, err := spec.Policy()
		if err != nil {
			return TrackResponse{}, err
		}
		thinned, _, err := thinSegments(segments, p)
		if err != nil {
			return TrackResponse{}, err
		}
		if err := s.store.SaveThinned(ctx, id, thinned); err != nil {
			return TrackResponse{}, err
		}
	}
	return newTrackResponse(rec, segments), nil
}

// SetThinning thins every segment of a stored track with spec and stores the
// result together with the options.
func (s *Service) SetThinning(ctx context.Context, id string, spec thin.Spec) (ThinningResponse, error) {
	p, err := spec.Policy()
	if err != nil {
		return ThinningResponse{}, err
	}

	_, segments, err := s.store.LoadTrack(ctx, id)
	if err != nil {
		return ThinningResponse{}, err
	}

	resp := ThinningResponse{Policy: thin.SpecOf(p)}
	thinned, results, err := thinSegments(segments, p)
	if err != nil {
		return ThinningResponse{}, err
	}
	resp.Segments = results

	if err := s.store.SaveThinned(ctx, id, thinned); err != nil {
		return ThinningResponse{}, err
	}
	if err := s.store.SaveOptions(ctx, id, resp.Policy); err != nil {
		return ThinningResponse{}, err
	}
	return resp, nil
}

// Thinning returns the stored options, or the "none" spec when none were set.
func (s *Service) Thinning(ctx context.Context, id string) (thin.Spec, error) {
	if _, err := s.store.Record(ctx, id); err != nil {
		return thin.Spec{}, err
	}

	spec, err := s.store.LoadOptions(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return thin.Spec{Kind: thin.KindNone}, nil
	}
	return spec, err
}

// Export renders a stored track. With thinned set and no thinning stored yet
// the original segments are exported.
func (s *Service) Export(ctx context.Context, id, kind string, thinned bool) ([]byte, string, error) {
	rec, segments, err := s.store.LoadTrack(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if thinned {
		processed, err := s.store.LoadThinned(ctx, id)
		switch {
		case err == nil:
			segments = processed
		case !errors.Is(err, store.ErrNotFound):
			return nil, "", err
		}
	}

	if kind == "" {
		kind = format.KindGPX
	}
	data, err := format.Render(segments, rec.Name, kind)
	if err != nil {
		return nil, "", err
	}
	return data, format.ContentType(kind), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTrack(ctx, id)
}

func thinSegments(segments []track.Segment, p thin.Policy) ([]track.Segment, []SegmentResult, error) {
	thinned := make([]track.Segment, len(segments))
	var results []SegmentResult
	for i, seg := range segments {
		result, err := thin.Apply(seg.Points, p)
		if err != nil {
			return nil, nil, fmt.Errorf("segment %d: %w", i, err)
		}
		thinned[i] = seg
		thinned[i].Points = result.Points
		results = append(results, SegmentResult{
			TrackIndex:   seg.TrackIndex,
			SegmentIndex: seg.SegmentIndex,
			Before:       result.Before,
			After:        result.After,
		})
	}
	return thinned, results, nil
}

func newTrackResponse(rec store.Record, segments []track.Segment) TrackResponse {
	resp := TrackResponse{Record: rec, Stats: track.Calculate(flatten(segments))}
	for i, f := range edit.Files(segments) {
		info := FileInfo{Index: i, Name: f.Name, Segments: len(f.Segments), Points: f.Points()}
		if first := f.Earliest(); !first.IsZero() {
			info.StartTime = &first
		}
		resp.Files = append(resp.Files, info)
	}
	return resp
}

func decodeUpload(name string, body []byte) ([]track.Segment, error) {
	var (
		segments []track.Segment
		err      error
	)
	if gpx.Sniff(body) {
		var doc *gpx.Document
		doc, err = gpx.ParseBytes(body)
		if err == nil {
			segments = doc.Segments(name)
		}
	} else {
		segments, err = format.DecodeGeoJSON(body)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no track segments", ErrInvalidInput)
	}
	return segments, nil
}

func flatten(segments []track.Segment) []track.Point {
	var points []track.Point
	for _, seg := range segments {
		points = append(points, seg.Points...)
	}
	return points
}
