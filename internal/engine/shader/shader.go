// Package shader builds the GLSL programs used by the renderer.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Stage names the step of program construction that failed.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageLink     Stage = "link"
)

// ErrUniformNotFound is returned for uniforms that are missing or optimized out.
var ErrUniformNotFound = errors.New("uniform not found")

// BuildError carries the driver's info log for a failed stage.
type BuildError struct {
	Stage Stage
	Log   string
}

func (e *BuildError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("%s stage failed", e.Stage)
	}
	return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Log)
}

// Build compiles both stages and links them into a program.
func Build(vertexSrc, fragmentSrc string, log *zap.Logger) (uint32, error) {
	if log == nil {
		log = zap.NewNop()
	}

	vert, err := compile(vertexSrc, gl.VERTEX_SHADER, StageVertex)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compile(fragmentSrc, gl.FRAGMENT_SHADER, StageFragment)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		var n int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, n+1)
		gl.GetProgramInfoLog(program, n, nil, &buf[0])
		gl.DeleteProgram(program)
		return 0, &BuildError{Stage: StageLink, Log: infoLog(buf)}
	}

	log.Debug("shader program linked", zap.Uint32("program", program))
	return program, nil
}

func compile(source string, kind uint32, stage Stage) (uint32, error) {
	sh := gl.CreateShader(kind)
	src, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, src, nil)
	free()
	gl.CompileShader(sh)

	var ok int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		buf := make([]byte, n+1)
		gl.GetShaderInfoLog(sh, n, nil, &buf[0])
		gl.DeleteShader(sh)
		return 0, &BuildError{Stage: stage, Log: infoLog(buf)}
	}
	return sh, nil
}

// infoLog trims the NUL terminator and trailing newlines drivers append.
func infoLog(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00\r\n\t ")
}

// Uniform looks up a uniform location in a linked program.
func Uniform(program uint32, name string) (int32, error) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return -1, fmt.Errorf("%w: %q in program %d", ErrUniformNotFound, name, program)
	}
	return loc, nil
}
