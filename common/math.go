package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// NegateRow flips the sign of every element in one row of a 4x4 matrix in place.
// mgl32 matrices are column-major, so a row is spread across all four columns.
//
// Parameters:
//   - m: the matrix to modify
//   - row: the row index (0..3)
func NegateRow(m *mgl32.Mat4, row int) {
	m.SetRow(row, m.Row(row).Mul(-1))
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the input data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
