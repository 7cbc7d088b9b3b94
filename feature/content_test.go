package feature

import (
	"math"
	"testing"
	"time"
)

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		name                   string
		uLat, uLon, eLat, eLon float64
		maxKm                  float64
		want                   float64
		tol                    float64
	}{
		{"same point", 40.0, -74.0, 40.0, -74.0, 80, 1, 0},
		{"about 40km north", 40.0, -74.0, 40.36, -74.0, 80, 0.4996, 0.001},
		{"beyond radius", 40.0, -74.0, 41.0, -74.0, 80, 0, 0},
		{"non-positive radius", 40.0, -74.0, 40.0, -74.0, 0, 0, 0},
		{"negative radius", 40.0, -74.0, 40.0, -74.0, -5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceScore(tt.uLat, tt.uLon, tt.eLat, tt.eLon, tt.maxKm)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("DistanceScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceScore_Monotone(t *testing.T) {
	prev := 2.0
	for d := 0.0; d < 1.0; d += 0.05 {
		got := DistanceScore(0, 0, d, 0, DefaultMaxDistanceKm)
		if got < 0 || got > 1 {
			t.Fatalf("DistanceScore(%v) = %v out of [0,1]", d, got)
		}
		if got > prev {
			t.Fatalf("DistanceScore not non-increasing at %v: %v > %v", d, got, prev)
		}
		prev = got
	}
}

func TestHaversineKm(t *testing.T) {
	// 赤道上 1 度经度约 111.19 km
	got := HaversineKm(0, 0, 0, 1)
	if math.Abs(got-111.19) > 0.01 {
		t.Errorf("HaversineKm() = %v, want ~111.19", got)
	}
}

func TestInterestScore(t *testing.T) {
	tests := []struct {
		name       string
		user, cats []string
		want       float64
	}{
		{"empty user", nil, []string{"music"}, 0},
		{"no overlap", []string{"music"}, []string{"sports"}, 0},
		{"case insensitive full", []string{"Music", "ART"}, []string{"art", "music"}, 1},
		{"one of three", []string{"music", "art", "food"}, []string{"MUSIC"}, 0.3333},
		{"duplicates collapse", []string{"music", "Music"}, []string{"music"}, 1},
		{"empty categories", []string{"music"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InterestScore(tt.user, tt.cats); got != tt.want {
				t.Errorf("InterestScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		start string
		want  float64
	}{
		{"2025-06-01T18:00:00Z", 1},
		{"2025-06-03T12:00:00", 0.3333},
		{"2025-06-04", 0.3333},
		{"2025-06-03T12:00:00+02:00", 0.5},
		{"2025-05-01T00:00:00Z", 1},
		{"tomorrow", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			if got := TimeScore(tt.start, now); got != tt.want {
				t.Errorf("TimeScore(%q) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestParseStartTime_NaiveIsUTC(t *testing.T) {
	got, ok := ParseStartTime("2025-06-03T12:00:00")
	if !ok {
		t.Fatal("ParseStartTime() failed")
	}
	want := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseStartTime() = %v, want %v", got, want)
	}
}

func TestTimeScore_NaiveScoredAsUTC(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		naive, zoned string
	}{
		{"2025-06-01T18:00:00", "2025-06-01T18:00:00Z"},
		{"2025-06-03 12:00:00", "2025-06-03T12:00:00Z"},
		{"2025-06-10T09:30", "2025-06-10T09:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.naive, func(t *testing.T) {
			got := TimeScore(tt.naive, now)
			if got == 0 {
				t.Fatalf("TimeScore(%q) = 0, want scored as UTC", tt.naive)
			}
			if want := TimeScore(tt.zoned, now); got != want {
				t.Errorf("TimeScore(%q) = %v, want %v (same as %q)", tt.naive, got, want, tt.zoned)
			}
		})
	}
}
