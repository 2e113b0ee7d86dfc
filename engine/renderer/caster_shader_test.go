package renderer

import (
	"strings"
	"testing"
)

func TestValidateCasterShader(t *testing.T) {
	fragment := `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`
	tests := []struct {
		name    string
		source  string
		entry   string
		wantErr string
	}{
		{"default shader", DefaultCasterShaderSource, DefaultCasterEntryPoint, ""},
		{"missing entry point", DefaultCasterShaderSource, "main", "not found"},
		{"fragment entry point", fragment, "fs_main", "not a vertex stage"},
		{"syntax error", "fn broken( {", "vs_main", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCasterShader(tt.source, tt.entry)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
