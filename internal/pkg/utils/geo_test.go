package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{"same point", -6.2, 106.8, -6.2, 106.8, 0, 0.001},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 1},
		{"jakarta to bandung", -6.2088, 106.8456, -6.9175, 107.6191, 116000, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}
