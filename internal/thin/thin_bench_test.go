package thin

import (
	"fmt"
	"testing"

	"github.com/planbiir/gthin/internal/track"
)

// Benchmark thinning policies with different track sizes
func BenchmarkPolicies(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	policies := []Policy{
		Stride{Every: 16},
		Minutes(1),
		DistanceInterval{Meters: 50},
	}

	for _, size := range sizes {
		points := linearTrack(size)
		for _, p := range policies {
			b.Run(fmt.Sprintf("%s-%d-points", p, size), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := Thin(points, p); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCalculate(b *testing.B) {
	points := linearTrack(10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		stats := track.Calculate(points)
		if stats.TotalPoints != len(points) {
			b.Fatal("wrong point count")
		}
	}
}
