package birch

import (
	"fmt"
	"regexp"
	"strings"
)

// Shader is a compiled device program. A shader whose compilation failed is
// kept as an unlinked placeholder: materials using it skip their draws.
type Shader struct {
	Name string

	dev    Device
	id     ProgramID
	linked bool
	err    error
}

// CompileShader compiles src on dev. On failure it returns the unlinked
// placeholder together with the compile error.
func CompileShader(dev Device, src ShaderSource) (*Shader, error) {
	s := &Shader{Name: src.Name, dev: dev}
	id, err := dev.CreateProgram(src)
	if err != nil {
		s.err = fmt.Errorf("compile shader %q: %w", src.Name, err)
		return s, s.err
	}
	s.id = id
	s.linked = true
	return s, nil
}

// ID returns the device program handle. Zero for placeholders.
func (s *Shader) ID() ProgramID { return s.id }

// Linked reports whether the program compiled and can draw.
func (s *Shader) Linked() bool { return s != nil && s.linked }

// Err returns the compile error of a placeholder.
func (s *Shader) Err() error { return s.err }

// Use makes the shader the device's current program.
func (s *Shader) Use(dev Device) { dev.UseProgram(s.id) }

// Dispose deletes the device program.
func (s *Shader) Dispose() {
	if !s.linked {
		return
	}
	s.dev.DeleteProgram(s.id)
	s.id = 0
	s.linked = false
}

var shaderSectionRe = regexp.MustCompile(`\[Shader\s+([a-zA-Z\d]*)\]`)

// ParseShaderSections splits a combined shader file into its named sections.
// Each section starts with a "[Shader name]" header line and runs until the
// next header. Text before the first header is ignored.
func ParseShaderSections(src string) map[string]string {
	out := make(map[string]string)
	locs := shaderSectionRe.FindAllStringSubmatchIndex(src, -1)
	for i, loc := range locs {
		name := src[loc[2]:loc[3]]
		end := len(src)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[name] = strings.TrimSpace(src[loc[1]:end])
	}
	return out
}
