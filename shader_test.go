package birch

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseShaderSections(t *testing.T) {
	src := `// header comment is ignored
[Shader vertex]
void main() { gl_Position = vec4(0); }

[Shader fragment]
void main() { gl_FragColor = vec4(1); }
`
	sections := ParseShaderSections(src)
	require.Len(t, sections, 2)
	assert.Equal(t, "void main() { gl_Position = vec4(0); }", sections["vertex"])
	assert.Equal(t, "void main() { gl_FragColor = vec4(1); }", sections["fragment"])

	assert.Empty(t, ParseShaderSections("no headers here"))
}

func TestCompileShader(t *testing.T) {
	dev := newRecordingDevice()
	s, err := CompileShader(dev, ShaderSource{Name: "unlit", Program: UnlitProgram{}})
	require.NoError(t, err)
	assert.True(t, s.Linked())
	assert.NotZero(t, s.ID())
	assert.NoError(t, s.Err())

	s.Dispose()
	assert.False(t, s.Linked())
	assert.Zero(t, s.ID())
	assert.Empty(t, dev.programs)
	s.Dispose()
}

func TestCompileShaderFailureKeepsPlaceholder(t *testing.T) {
	dev := newRecordingDevice()
	dev.failCompile = true
	s, err := CompileShader(dev, ShaderSource{Name: "broken", Program: UnlitProgram{}})
	require.Error(t, err)
	require.NotNil(t, s)
	assert.False(t, s.Linked())
	assert.ErrorIs(t, s.Err(), err)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestLoadShaderLogsFailure(t *testing.T) {
	app := newTestApp(t)
	core, logs := observer.New(zap.ErrorLevel)
	app.SetLogger(zap.New(core))

	s := app.LoadShader("text-only", ShaderSource{Name: "text-only", Sections: ParseShaderSections("[Shader vertex]\nx")})
	assert.False(t, s.Linked())
	assert.Same(t, s, app.Shader("text-only"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "shader compile failed", entry.Message)
	assert.Equal(t, "text-only", entry.ContextMap()["shader"])
}

func TestNilShaderIsNotLinked(t *testing.T) {
	var s *Shader
	assert.False(t, s.Linked())
	m := NewMaterial("orphan", nil, RenderOpaque)
	assert.False(t, m.Drawable())
}

func TestMaterialUseBindsTexturesInOrder(t *testing.T) {
	dev := newRecordingDevice()
	s, err := CompileShader(dev, ShaderSource{Name: "tex", Program: TexturedProgram{}})
	require.NoError(t, err)
	m := NewMaterial("mat", s, RenderOpaque)
	m.Params.SetColor(UniformColor, ColorWhite)

	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	diffuse := NewTexture(dev, "diffuse", img)
	detail := NewTexture(dev, "detail", img)
	m.SetTexture(UniformTexture, diffuse)
	m.SetTexture("_detail", detail)
	w, h := diffuse.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	m.Use(dev)
	assert.Equal(t, s.ID(), dev.program)
	assert.Equal(t, Int32s{0}, dev.uniforms[UniformTexture])
	assert.Equal(t, Int32s{1}, dev.uniforms["_detail"])
	assert.Equal(t, Int32s{2}, dev.uniforms[UniformSamplerCount])
	assert.Equal(t, Float32s{1, 1, 1, 1}, dev.uniforms[UniformColor])

	m.SetTexture(UniformTexture, nil)
	assert.Nil(t, m.Texture(UniformTexture))
	assert.Same(t, detail, m.Texture("_detail"))
}

func TestMaterialDispose(t *testing.T) {
	dev := newRecordingDevice()
	s, err := CompileShader(dev, ShaderSource{Name: "s", Program: UnlitProgram{}})
	require.NoError(t, err)

	shared := NewMaterial("shared", s, RenderOpaque)
	shared.Dispose()
	assert.False(t, shared.Drawable())
	assert.True(t, s.Linked(), "shader not owned")

	owner := NewMaterial("owner", s, RenderTranslucent)
	owner.OwnsShader = true
	owner.Dispose()
	owner.Dispose()
	assert.False(t, s.Linked())
	assert.Equal(t, RenderTranslucent, owner.Mode())
}
