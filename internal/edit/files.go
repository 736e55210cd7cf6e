package edit

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/planbiir/gthin/internal/track"
)

// ErrFileIndex is returned when a file index does not exist in a session.
var ErrFileIndex = errors.New("file index out of range")

// File is the run of segments read from one source file.
type File struct {
	Name     string
	Segments []track.Segment
}

// Earliest returns the first timestamp found anywhere in the file, or the
// zero time when no point carries one.
func (f File) Earliest() time.Time {
	var first time.Time
	for _, seg := range f.Segments {
		for _, p := range seg.Points {
			if p.HasTime() && (first.IsZero() || p.Time.Before(first)) {
				first = p.Time
			}
		}
	}
	return first
}

// Points counts the points of every segment in the file.
func (f File) Points() int {
	n := 0
	for _, seg := range f.Segments {
		n += len(seg.Points)
	}
	return n
}

// Files splits a session into its files. Consecutive segments sharing a
// Source belong to the same file.
func Files(session []track.Segment) []File {
	var files []File
	for _, seg := range session {
		if n := len(files); n > 0 && files[n-1].Name == seg.Source {
			files[n-1].Segments = append(files[n-1].Segments, seg)
			continue
		}
		files = append(files, File{Name: seg.Source, Segments: []track.Segment{seg}})
	}
	return files
}

// Join flattens files back into one session.
func Join(files []File) []track.Segment {
	var session []track.Segment
	for _, f := range files {
		session = append(session, f.Segments...)
	}
	return session
}

// SortFiles orders files by their earliest timestamp. Files without any
// timestamp go last and keep their relative order.
func SortFiles(files []File) {
	slices.SortStableFunc(files, func(a, b File) int {
		ta, tb := a.Earliest(), b.Earliest()
		switch {
		case ta.IsZero() && tb.IsZero():
			return 0
		case ta.IsZero():
			return 1
		case tb.IsZero():
			return -1
		}
		return ta.Compare(tb)
	})
}

// AddFile appends the segments of one file to a session and reorders the
// session by date. The added segments take name as their Source; a name
// already used in the session gets a numeric suffix.
func AddFile(session []track.Segment, name string, segments []track.Segment) []track.Segment {
	files := Files(session)
	name = uniqueName(files, name)

	added := File{Name: name, Segments: make([]track.Segment, len(segments))}
	for i, seg := range segments {
		seg.Source = name
		added.Segments[i] = seg
	}

	files = append(files, added)
	SortFiles(files)
	return Join(files)
}

// RemoveFile drops the file at index from a session. The remaining files
// keep their order.
func RemoveFile(session []track.Segment, index int) ([]track.Segment, error) {
	files := Files(session)
	if index < 0 || index >= len(files) {
		return nil, fmt.Errorf("%w: %d of %d files", ErrFileIndex, index, len(files))
	}
	return Join(slices.Delete(files, index, index+1)), nil
}

func uniqueName(files []File, name string) string {
	if name == "" {
		name = fmt.Sprintf("file %d", len(files)+1)
	}
	taken := func(n string) bool {
		return slices.ContainsFunc(files, func(f File) bool { return f.Name == n })
	}

	candidate := name
	for i := 2; taken(candidate); i++ {
		candidate = fmt.Sprintf("%s (%d)", name, i)
	}
	return candidate
}
