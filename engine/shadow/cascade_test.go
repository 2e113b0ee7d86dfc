package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBuildCascadeNeverGrowsSphere(t *testing.T) {
	tests := []struct {
		name     string
		radius   float32
		tileSize float32
		filter   FilterMode
	}{
		{"small pcf2", 5, 256, FilterPCF2x2},
		{"large pcf7", 80, 512, FilterPCF7x7},
		{"tiny tile", 1, 2, FilterPCF7x7},
		{"zero radius", 0, 1024, FilterPCF3x3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BuildCascade(mgl32.Vec4{1, 2, 3, tt.radius}, tt.tileSize, tt.filter)

			if c.CullingSphere.W() < 0 {
				t.Fatalf("Expected non-negative squared radius, got %v", c.CullingSphere.W())
			}
			if r := float32(math.Sqrt(float64(c.CullingSphere.W()))); r > tt.radius {
				t.Errorf("Expected radius <= %v, got %v", tt.radius, r)
			}
			if c.CullingSphere.Vec3() != (mgl32.Vec3{1, 2, 3}) {
				t.Errorf("Expected center to be kept, got %v", c.CullingSphere.Vec3())
			}
		})
	}
}

func TestBuildCascadeData(t *testing.T) {
	c := BuildCascade(mgl32.Vec4{0, 0, 0, 10}, 256, FilterPCF2x2)

	filterSize := float32(20.0 / 256.0)
	radius := 10 - filterSize
	if !mgl32.FloatEqual(c.CullingSphere.W(), radius*radius) {
		t.Errorf("Expected squared radius %v, got %v", radius*radius, c.CullingSphere.W())
	}
	if !mgl32.FloatEqual(c.Data.X(), 1/(radius*radius)) {
		t.Errorf("Expected 1/r² %v, got %v", 1/(radius*radius), c.Data.X())
	}
	if !mgl32.FloatEqual(c.Data.Y(), filterSize*math.Sqrt2) {
		t.Errorf("Expected filter bias %v, got %v", filterSize*math.Sqrt2, c.Data.Y())
	}
}

func TestBuildCascadeWiderFilterShrinksMore(t *testing.T) {
	pcf2 := BuildCascade(mgl32.Vec4{0, 0, 0, 10}, 256, FilterPCF2x2)
	pcf5 := BuildCascade(mgl32.Vec4{0, 0, 0, 10}, 256, FilterPCF5x5)

	if pcf5.CullingSphere.W() >= pcf2.CullingSphere.W() {
		t.Errorf("Expected PCF5x5 sphere smaller than PCF2x2, got %v >= %v", pcf5.CullingSphere.W(), pcf2.CullingSphere.W())
	}
}
