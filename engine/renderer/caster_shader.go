package renderer

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// validateCasterShader parses and validates WGSL caster source and checks that entryPoint
// names a vertex stage.
//
// Parameters:
//   - source: the WGSL source
//   - entryPoint: the vertex entry point name
//
// Returns:
//   - error: parse, lowering or validation errors, or a missing vertex entry point
func validateCasterShader(source, entryPoint string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("caster shader: parse: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return fmt.Errorf("caster shader: lower: %w", err)
	}
	issues, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("caster shader: validate: %w", err)
	}
	if len(issues) > 0 {
		errs := make([]error, len(issues))
		for i, issue := range issues {
			errs[i] = issue
		}
		return fmt.Errorf("caster shader: %w", errors.Join(errs...))
	}

	for _, ep := range module.EntryPoints {
		if ep.Name != entryPoint {
			continue
		}
		if ep.Stage != ir.StageVertex {
			return fmt.Errorf("caster shader: entry point %q is not a vertex stage", entryPoint)
		}
		return nil
	}
	return fmt.Errorf("caster shader: entry point %q not found", entryPoint)
}
