package renderer

import "github.com/go-gl/mathgl/mgl32"

// globalStore keeps the named shader globals and keywords published by the shadow
// system. Arrays are copied so callers may reuse their backing storage.
type globalStore struct {
	ints         map[string]int32
	floats       map[string]float32
	vectors      map[string]mgl32.Vec4
	vectorArrays map[string][]mgl32.Vec4
	matrixArrays map[string][]mgl32.Mat4
	textures     map[string]string
	keywords     map[string]bool
}

func newGlobalStore() *globalStore {
	return &globalStore{
		ints:         make(map[string]int32),
		floats:       make(map[string]float32),
		vectors:      make(map[string]mgl32.Vec4),
		vectorArrays: make(map[string][]mgl32.Vec4),
		matrixArrays: make(map[string][]mgl32.Mat4),
		textures:     make(map[string]string),
		keywords:     make(map[string]bool),
	}
}

func (g *globalStore) setVectorArray(name string, v []mgl32.Vec4) {
	g.vectorArrays[name] = append(g.vectorArrays[name][:0], v...)
}

func (g *globalStore) setMatrixArray(name string, m []mgl32.Mat4) {
	g.matrixArrays[name] = append(g.matrixArrays[name][:0], m...)
}

// lookup returns the value stored under name, whatever its kind.
func (g *globalStore) lookup(name string) (any, bool) {
	if v, ok := g.ints[name]; ok {
		return v, true
	}
	if v, ok := g.floats[name]; ok {
		return v, true
	}
	if v, ok := g.vectors[name]; ok {
		return v, true
	}
	if v, ok := g.vectorArrays[name]; ok {
		return v, true
	}
	if v, ok := g.matrixArrays[name]; ok {
		return v, true
	}
	if v, ok := g.textures[name]; ok {
		return v, true
	}
	return nil, false
}

// resolveTexture follows texture aliases set with SetGlobalTexture until it reaches a
// name with no alias. Alias cycles stop at the first repeated name.
func (g *globalStore) resolveTexture(name string) string {
	seen := map[string]bool{}
	for !seen[name] {
		seen[name] = true
		next, ok := g.textures[name]
		if !ok {
			return name
		}
		name = next
	}
	return name
}
