package scene

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/world"
)

// EvalTimeout is the hard limit for a single script evaluation
const EvalTimeout = 5 * time.Second

// EvalError is a parse or runtime error in a scene script
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ScriptOptions controls scene script evaluation
type ScriptOptions struct {
	Name    string      // Scene name; defaults to "script"
	BaseDir string      // Directory that relative mesh paths resolve against
	Logger  core.Logger // Receives mesh import progress
}

type evalResult struct {
	scene  *Scene
	errors []EvalError
	err    error
}

// Evaluate runs a scene script in a fresh sandboxed interpreter and returns
// the scene it describes.
//
//   - On success: scene, nil, nil
//   - On parse or runtime errors in the script: nil, errors, nil
//   - On timeout, cancellation or a panic: nil, nil, error
func Evaluate(ctx context.Context, source string, opts ScriptOptions) (*Scene, []EvalError, error) {
	ctx, cancel := context.WithTimeout(ctx, EvalTimeout)
	defer cancel()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs, err := evaluate(source, opts)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	return waitForResult(ctx, ch)
}

// waitForResult returns the evaluation result, or an error once ctx is done.
// A timed-out evaluation keeps running in the background and its result is
// dropped.
func waitForResult(ctx context.Context, ch <-chan evalResult) (*Scene, []EvalError, error) {
	select {
	case res := <-ch:
		return res.scene, res.errors, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
		}
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}

func evaluate(source string, opts ScriptOptions) (*Scene, []EvalError, error) {
	name := opts.Name
	if name == "" {
		name = "script"
	}
	logger := opts.Logger
	if logger == nil {
		logger = core.DiscardLogger{}
	}

	s := New(name, world.NewWorld(upperLeftLight()))
	if strings.TrimSpace(source) == "" {
		return s, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, &builder{scene: s, baseDir: opts.BaseDir, logger: logger})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return s, nil, nil
}

// LoadFile evaluates the scene script at path. Relative mesh paths inside
// the script resolve against the script's directory.
func LoadFile(path string, logger core.Logger) (*Scene, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene script: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, evalErrs, err := Evaluate(context.Background(), string(source), ScriptOptions{
		Name:    name,
		BaseDir: filepath.Dir(path),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("%s: %w", path, evalErrs[0])
	}
	return s, nil
}

// linePattern matches interpreter messages of the form "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ..."
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts an interpreter error into EvalErrors, pulling
// out a line number when the message carries one
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, pattern := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := pattern.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
