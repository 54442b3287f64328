// Package engine evaluates table descriptions written in a small Lisp. It
// wraps zygomys in a sandboxed environment and produces a table.Config
// from user source code.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/baize/pkg/table"
	zygo "github.com/glycerine/zygomys/zygo"
	log "github.com/sirupsen/logrus"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or an invalid table.
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

// EvalErrors joins several EvalError values into one error.
type EvalErrors []EvalError

func (es EvalErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	log        *log.Entry
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{log: log.WithField("component", "engine")}
}

// Evaluate takes Lisp source code and produces a table config.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns config + nil errors + nil error
//   - On parse/eval/validation failure: returns nil config + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
//
// A program that declares nothing yields an empty config and is not
// validated.
func (e *Engine) Evaluate(source string) (*table.Config, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		cfg, evalErrs, err := e.evaluate(source)
		ch <- evalResult{config: cfg, errors: evalErrs, err: err}
	}()

	cfg, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation)
	if err != nil {
		e.log.WithError(err).Warn("evaluation failed")
	} else if len(evalErrs) > 0 {
		e.log.WithField("errors", len(evalErrs)).Debug("evaluation produced errors")
	}
	return cfg, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*table.Config, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return &table.Config{}, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newTableBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if !b.declared {
		return &table.Config{}, nil, nil
	}

	cfg := b.cfg
	cfg.ApplyDefaults()
	res := table.Validate(&cfg)
	for _, w := range res.Warnings {
		e.log.Warn(w.String())
	}
	if !res.OK() {
		evalErrs := make([]EvalError, len(res.Errors))
		for i, ce := range res.Errors {
			evalErrs[i] = EvalError{Message: ce.Error()}
		}
		return nil, evalErrs, nil
	}
	return &cfg, nil, nil
}

// LoadTable reads a table description from path. Files ending in .yaml or
// .yml are decoded as YAML, anything else is evaluated as Lisp.
func LoadTable(path string) (*table.Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return table.LoadFile(path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	cfg, evalErrs, err := NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("evaluate %s: %w", path, EvalErrors(evalErrs))
	}
	if cfg.Ground.Width == 0 && len(cfg.Balls) == 0 {
		return nil, fmt.Errorf("evaluate %s: %w", path, errEmptyTable)
	}
	return cfg, nil
}

var errEmptyTable = errors.New("program declares no table")

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
