package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-atlas/engine/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrAtlasInUse is returned when an atlas name is allocated twice without a release.
	ErrAtlasInUse = errors.New("renderer: shadow atlas already allocated")
	// ErrUnknownAtlas is returned when releasing or targeting an atlas that was never allocated.
	ErrUnknownAtlas = errors.New("renderer: unknown shadow atlas")
	// ErrInvalidAtlasSize is returned for atlas sizes outside [1, max texture size].
	ErrInvalidAtlasSize = errors.New("renderer: invalid shadow atlas size")
)

// CommandKind identifies a recorded command.
type CommandKind int

const (
	CommandGetAtlas CommandKind = iota
	CommandReleaseAtlas
	CommandSetRenderTarget
	CommandSetViewport
	CommandSetViewProjection
	CommandSetDepthBias
	CommandDrawShadows
	CommandSetGlobalInt
	CommandSetGlobalFloat
	CommandSetGlobalVector
	CommandSetGlobalVectorArray
	CommandSetGlobalMatrixArray
	CommandSetGlobalTexture
	CommandSetKeyword
)

// Command is one recorded shadow command. Only the fields relevant to Kind are set.
type Command struct {
	Kind       CommandKind
	Name       string
	Size       int
	Viewport   shadow.Viewport
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Bias       float32
	SlopeBias  float32
	Draw       shadow.DrawShadowsSettings
	Int        int32
	Float      float32
	Vector     mgl32.Vec4
	Vectors    []mgl32.Vec4
	Matrices   []mgl32.Mat4
	Source     string
	Enabled    bool
}

// CommandRecorder is an in-memory shadow.CommandBuffer. It validates atlas usage,
// tracks the resulting globals and can replay what it recorded into another buffer.
// Render targets and draws that name no allocated atlas are still recorded; the
// errors surface from the next Execute.
type CommandRecorder struct {
	mu *sync.Mutex

	maxTextureSize int

	batches [][]Command
	pending []Command

	atlases map[string]int
	globals *globalStore

	target string
	errs   []error
}

var _ shadow.CommandBuffer = &CommandRecorder{}

// CommandRecorderOption is a function that configures a CommandRecorder during construction.
type CommandRecorderOption func(*CommandRecorder)

// WithMaxTextureSize is an option builder that sets the largest atlas the recorder accepts.
//
// Parameters:
//   - size: the maximum atlas edge length in texels
//
// Returns:
//   - CommandRecorderOption: a function that applies the limit to the recorder
func WithMaxTextureSize(size int) CommandRecorderOption {
	return func(r *CommandRecorder) {
		r.maxTextureSize = size
	}
}

// NewCommandRecorder creates an empty command recorder.
//
// Parameters:
//   - options: variadic list of CommandRecorderOption functions
//
// Returns:
//   - *CommandRecorder: the recorder
func NewCommandRecorder(options ...CommandRecorderOption) *CommandRecorder {
	r := &CommandRecorder{
		mu:             &sync.Mutex{},
		maxTextureSize: 8192,
		atlases:        make(map[string]int),
		globals:        newGlobalStore(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *CommandRecorder) record(c Command) {
	r.pending = append(r.pending, c)
}

func (r *CommandRecorder) GetTemporaryShadowAtlas(name string, size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if size < 1 || size > r.maxTextureSize {
		return fmt.Errorf("%w: %q size %d", ErrInvalidAtlasSize, name, size)
	}
	if _, ok := r.atlases[name]; ok {
		return fmt.Errorf("%w: %q", ErrAtlasInUse, name)
	}
	r.atlases[name] = size
	r.record(Command{Kind: CommandGetAtlas, Name: name, Size: size})
	return nil
}

func (r *CommandRecorder) ReleaseTemporaryShadowAtlas(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.atlases[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAtlas, name)
	}
	delete(r.atlases, name)
	r.record(Command{Kind: CommandReleaseAtlas, Name: name})
	return nil
}

func (r *CommandRecorder) SetRenderTarget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.atlases[name]; !ok {
		r.errs = append(r.errs, fmt.Errorf("%w: render target %q", ErrUnknownAtlas, name))
	}
	r.target = name
	r.record(Command{Kind: CommandSetRenderTarget, Name: name})
}

func (r *CommandRecorder) SetViewport(v shadow.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Kind: CommandSetViewport, Viewport: v})
}

func (r *CommandRecorder) SetViewProjectionMatrices(view, projection mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Kind: CommandSetViewProjection, View: view, Projection: projection})
}

func (r *CommandRecorder) SetGlobalDepthBias(bias, slopeBias float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Kind: CommandSetDepthBias, Bias: bias, SlopeBias: slopeBias})
}

func (r *CommandRecorder) DrawShadows(settings shadow.DrawShadowsSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.atlases[r.target]; !ok {
		r.errs = append(r.errs, fmt.Errorf("%w: draw for light %d into %q",
			ErrUnknownAtlas, settings.VisibleLightIndex, r.target))
	}
	r.record(Command{Kind: CommandDrawShadows, Draw: settings})
}

func (r *CommandRecorder) SetGlobalInt(name string, v int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.ints[name] = v
	r.record(Command{Kind: CommandSetGlobalInt, Name: name, Int: v})
}

func (r *CommandRecorder) SetGlobalFloat(name string, v float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.floats[name] = v
	r.record(Command{Kind: CommandSetGlobalFloat, Name: name, Float: v})
}

func (r *CommandRecorder) SetGlobalVector(name string, v mgl32.Vec4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.vectors[name] = v
	r.record(Command{Kind: CommandSetGlobalVector, Name: name, Vector: v})
}

func (r *CommandRecorder) SetGlobalVectorArray(name string, v []mgl32.Vec4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.setVectorArray(name, v)
	r.record(Command{Kind: CommandSetGlobalVectorArray, Name: name, Vectors: append([]mgl32.Vec4(nil), v...)})
}

func (r *CommandRecorder) SetGlobalMatrixArray(name string, m []mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.setMatrixArray(name, m)
	r.record(Command{Kind: CommandSetGlobalMatrixArray, Name: name, Matrices: append([]mgl32.Mat4(nil), m...)})
}

func (r *CommandRecorder) SetGlobalTexture(name, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.textures[name] = source
	r.record(Command{Kind: CommandSetGlobalTexture, Name: name, Source: source})
}

func (r *CommandRecorder) SetKeyword(keyword string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals.keywords[keyword] = enabled
	r.record(Command{Kind: CommandSetKeyword, Name: keyword, Enabled: enabled})
}

// Execute closes the current batch. An empty batch is not recorded.
//
// Returns:
//   - error: the joined atlas usage errors recorded since the last Execute
func (r *CommandRecorder) Execute() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := errors.Join(r.errs...)
	r.errs = nil
	if err != nil {
		shadow.Logger().Warn("recorded shadow batch has errors", "error", err)
	}

	if len(r.pending) > 0 {
		r.batches = append(r.batches, r.pending)
		r.pending = nil
	}
	return err
}

// Batches returns the executed batches in submission order.
func (r *CommandRecorder) Batches() [][]Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

// Commands returns every recorded command, executed or pending, in order.
func (r *CommandRecorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Command
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return append(all, r.pending...)
}

// Draws returns the settings of every recorded draw in order.
func (r *CommandRecorder) Draws() []shadow.DrawShadowsSettings {
	var draws []shadow.DrawShadowsSettings
	for _, c := range r.Commands() {
		if c.Kind == CommandDrawShadows {
			draws = append(draws, c.Draw)
		}
	}
	return draws
}

// Atlas returns the size of an allocated atlas. Aliases set with SetGlobalTexture are followed.
//
// Parameters:
//   - name: the atlas or alias name
//
// Returns:
//   - int: the atlas size
//   - bool: false if no atlas is allocated under the resolved name
func (r *CommandRecorder) Atlas(name string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	size, ok := r.atlases[r.globals.resolveTexture(name)]
	return size, ok
}

// Global returns the last value set for a named global.
func (r *CommandRecorder) Global(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.globals.lookup(name)
}

// Keyword reports whether a keyword is enabled.
func (r *CommandRecorder) Keyword(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.globals.keywords[name]
}

// Reset drops every recorded command and pending error. Allocated atlases and globals are kept.
func (r *CommandRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
	r.pending = nil
	r.target = ""
	r.errs = nil
}

// Replay issues every executed batch into target, calling target.Execute after each batch.
//
// Parameters:
//   - target: the command buffer to replay into
//
// Returns:
//   - error: the first error returned by target
func (r *CommandRecorder) Replay(target shadow.CommandBuffer) error {
	for _, batch := range r.Batches() {
		for _, c := range batch {
			if err := replayCommand(target, c); err != nil {
				return err
			}
		}
		if err := target.Execute(); err != nil {
			return err
		}
	}
	return nil
}

func replayCommand(target shadow.CommandBuffer, c Command) error {
	switch c.Kind {
	case CommandGetAtlas:
		return target.GetTemporaryShadowAtlas(c.Name, c.Size)
	case CommandReleaseAtlas:
		return target.ReleaseTemporaryShadowAtlas(c.Name)
	case CommandSetRenderTarget:
		target.SetRenderTarget(c.Name)
	case CommandSetViewport:
		target.SetViewport(c.Viewport)
	case CommandSetViewProjection:
		target.SetViewProjectionMatrices(c.View, c.Projection)
	case CommandSetDepthBias:
		target.SetGlobalDepthBias(c.Bias, c.SlopeBias)
	case CommandDrawShadows:
		target.DrawShadows(c.Draw)
	case CommandSetGlobalInt:
		target.SetGlobalInt(c.Name, c.Int)
	case CommandSetGlobalFloat:
		target.SetGlobalFloat(c.Name, c.Float)
	case CommandSetGlobalVector:
		target.SetGlobalVector(c.Name, c.Vector)
	case CommandSetGlobalVectorArray:
		target.SetGlobalVectorArray(c.Name, c.Vectors)
	case CommandSetGlobalMatrixArray:
		target.SetGlobalMatrixArray(c.Name, c.Matrices)
	case CommandSetGlobalTexture:
		target.SetGlobalTexture(c.Name, c.Source)
	case CommandSetKeyword:
		target.SetKeyword(c.Name, c.Enabled)
	default:
		return fmt.Errorf("renderer: unknown command kind %d", c.Kind)
	}
	return nil
}
