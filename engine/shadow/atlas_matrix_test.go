package shadow

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

func testClipMatrix() mgl32.Mat4 {
	view := mgl32.LookAtV(mgl32.Vec3{3, 5, 7}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.5, 30)
	return proj.Mul4(view)
}

func TestToAtlasMatrixReversedZCancelsPreNegatedDepth(t *testing.T) {
	m := testClipMatrix()

	flipped := m
	common.NegateRow(&flipped, 2)

	got := ToAtlasMatrix(flipped, mgl32.Vec2{}, 1, true)
	want := ToAtlasMatrix(m, mgl32.Vec2{}, 1, false)

	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Expected double negation to cancel, got %v want %v", got, want)
	}
	if got.Row(2) != m.Row(2).Add(m.Row(3)).Mul(0.5) {
		t.Errorf("Expected depth row 0.5*(row2+row3), got %v", got.Row(2))
	}
}

func TestToAtlasMatrixMapsClipSpaceIntoTile(t *testing.T) {
	atlas := ToAtlasMatrix(mgl32.Ident4(), mgl32.Vec2{1, 1}, 0.5, false)

	tests := []struct {
		clip mgl32.Vec4
		want mgl32.Vec4
	}{
		{mgl32.Vec4{-1, -1, -1, 1}, mgl32.Vec4{0.5, 0.5, 0, 1}},
		{mgl32.Vec4{1, 1, 1, 1}, mgl32.Vec4{1, 1, 1, 1}},
		{mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{0.75, 0.75, 0.5, 1}},
	}

	for _, tt := range tests {
		got := atlas.Mul4x1(tt.clip)
		if !got.ApproxEqual(tt.want) {
			t.Errorf("Expected %v to map to %v, got %v", tt.clip, tt.want, got)
		}
	}
}

func TestToAtlasMatrixReversedZFlipsDepth(t *testing.T) {
	atlas := ToAtlasMatrix(mgl32.Ident4(), mgl32.Vec2{}, 1, true)

	near := atlas.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	far := atlas.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !mgl32.FloatEqual(near.Z(), 0) || !mgl32.FloatEqual(far.Z(), 0.5) {
		t.Errorf("Expected reversed depth 1 -> 0 and 0 -> 0.5, got %v and %v", near.Z(), far.Z())
	}
}
