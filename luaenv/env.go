package luaenv

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// SubQueryFunc delegates a semantic sub-question to the secondary reasoning
// process. The returned string is handed to the calling snippet verbatim; an
// error is converted to error text, never raised into the snippet.
type SubQueryFunc func(ctx context.Context, prompt string) (string, error)

// Config configures an Environment.
type Config struct {
	// SubQuery is invoked by the Lua llm() helper. Optional; when nil,
	// llm() returns an unavailability notice.
	SubQuery SubQueryFunc

	// OutputLimit caps the captured output of one execution, in bytes.
	// Output beyond the limit is cut and TruncationMarker appended.
	// Defaults to DefaultOutputLimit.
	OutputLimit int
}

// DefaultOutputLimit is the default captured-output cap per execution.
const DefaultOutputLimit = 8192

// Result is the outcome of executing one snippet. Execution failures are
// reported here, never returned as Go errors.
type Result struct {
	Success    bool   `json:"success"`
	Output     string `json:"output"`
	Truncated  bool   `json:"truncated,omitempty"`
	ErrKind    string `json:"err_kind,omitempty"`    // "syntax", "runtime", "panic", "cancelled"
	ErrMessage string `json:"err_message,omitempty"`
}

// Environment is a Lua execution environment with a namespace that persists
// across Execute calls. It belongs to exactly one session and is not safe
// for concurrent use.
type Environment struct {
	state    *lua.LState
	corpus   *Corpus
	cfg      Config
	baseline map[string]bool // globals present before user code ran
	output   strings.Builder
	execCtx  context.Context // context of the in-flight Execute call
}

// New creates an Environment holding the given corpus. The corpus text,
// chunking helpers, the llm() callback, and an output-capturing print are
// installed into the namespace before any snippet runs.
func New(corpus *Corpus, cfg Config) *Environment {
	if cfg.OutputLimit <= 0 {
		cfg.OutputLimit = DefaultOutputLimit
	}

	e := &Environment{
		state:  lua.NewState(),
		corpus: corpus,
		cfg:    cfg,
	}

	e.install()
	e.baseline = e.globalNames()
	return e
}

// Close releases the interpreter. The namespace is discarded; nothing
// persists across sessions.
func (e *Environment) Close() {
	e.state.Close()
}

// Corpus returns the corpus this environment holds.
func (e *Environment) Corpus() *Corpus {
	return e.corpus
}

// OutputLimit returns the configured captured-output cap.
func (e *Environment) OutputLimit() int {
	return e.cfg.OutputLimit
}

// install populates the namespace with the corpus and helpers.
func (e *Environment) install() {
	L := e.state

	L.SetGlobal("corpus", lua.LString(e.corpus.Text()))

	if e.corpus.IsDocumentList() {
		docs := L.NewTable()
		for _, d := range e.corpus.Documents() {
			docs.Append(lua.LString(d))
		}
		L.SetGlobal("documents", docs)
	}

	L.SetGlobal("print", L.NewFunction(e.luaPrint))
	L.SetGlobal("chunk", L.NewFunction(luaChunk))
	L.SetGlobal("chunk_lines", L.NewFunction(luaChunkLines))
	L.SetGlobal("llm", L.NewFunction(e.luaSubQuery))
}

// Execute runs a snippet against the persistent namespace and reports the
// outcome. It never returns an error and never panics: syntax faults,
// runtime faults, and cancellation all come back as a Result.
func (e *Environment) Execute(ctx context.Context, snippet string) (result Result) {
	e.output.Reset()
	e.execCtx = ctx

	defer func() {
		e.execCtx = nil
		if r := recover(); r != nil {
			out, truncated := truncateOutput(e.output.String(), e.cfg.OutputLimit)
			result = Result{
				Success:    false,
				Output:     out,
				Truncated:  truncated,
				ErrKind:    "panic",
				ErrMessage: fmt.Sprint(r),
			}
		}
	}()

	if ctx != nil {
		e.state.SetContext(ctx)
		defer e.state.RemoveContext()
	}

	err := e.state.DoString(snippet)

	out, truncated := truncateOutput(e.output.String(), e.cfg.OutputLimit)
	result = Result{
		Success:   err == nil,
		Output:    out,
		Truncated: truncated,
	}
	if err != nil {
		result.ErrKind, result.ErrMessage = classifyError(ctx, err)
	}
	return result
}

// GetVariable reads a variable from the namespace, rendered as text.
// The second return is false when the variable is not defined.
func (e *Environment) GetVariable(name string) (string, bool) {
	v := e.state.GetGlobal(name)
	if v == lua.LNil {
		return "", false
	}
	return renderValue(v), true
}

// ListVariables returns user-defined globals and their Lua type names,
// excluding the corpus, helpers, and everything else present at startup.
func (e *Environment) ListVariables() map[string]string {
	vars := make(map[string]string)
	e.state.G.Global.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || e.baseline[string(name)] {
			return
		}
		vars[string(name)] = v.Type().String()
	})
	return vars
}

// DescribeVariables returns a deterministic one-line summary of the
// user-defined namespace, or "" when empty.
func (e *Environment) DescribeVariables() string {
	vars := e.ListVariables()
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%s)", name, vars[name])
	}
	return strings.Join(parts, ", ")
}

// globalNames snapshots the current global names.
func (e *Environment) globalNames() map[string]bool {
	names := make(map[string]bool)
	e.state.G.Global.ForEach(func(k, v lua.LValue) {
		if name, ok := k.(lua.LString); ok {
			names[string(name)] = true
		}
	})
	return names
}

// luaPrint replaces Lua's print, writing to the capture buffer instead of
// the host's stdout. Arguments are tab-separated, as in stock print.
func (e *Environment) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		if i > 1 {
			e.output.WriteString("\t")
		}
		e.output.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	e.output.WriteString("\n")
	return 0
}

// luaSubQuery implements llm(prompt). Budget enforcement lives in the
// injected callback; failures surface as text so nothing raises into the
// snippet.
func (e *Environment) luaSubQuery(L *lua.LState) int {
	prompt := L.CheckString(1)

	if e.cfg.SubQuery == nil {
		L.Push(lua.LString("[sub-query unavailable: no secondary model configured]"))
		return 1
	}

	ctx := e.execCtx
	if ctx == nil {
		ctx = context.Background()
	}

	answer, err := e.cfg.SubQuery(ctx, prompt)
	if err != nil {
		L.Push(lua.LString(fmt.Sprintf("[sub-query error: %v]", err)))
		return 1
	}
	L.Push(lua.LString(answer))
	return 1
}

// classifyError maps an execution error to a (kind, message) pair.
func classifyError(ctx context.Context, err error) (string, string) {
	if ctx != nil && ctx.Err() != nil {
		return "cancelled", ctx.Err().Error()
	}
	if apiErr, ok := err.(*lua.ApiError); ok {
		kind := "runtime"
		switch apiErr.Type {
		case lua.ApiErrorSyntax:
			kind = "syntax"
		case lua.ApiErrorPanic:
			kind = "panic"
		}
		return kind, apiErr.Object.String()
	}
	return "runtime", err.Error()
}

// renderValue renders a Lua value as text. Table array elements are joined
// with newlines; keyed entries render as "key = value" lines.
func renderValue(v lua.LValue) string {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return v.String()
	}
	var parts []string
	arrayLen := tbl.Len()
	tbl.ForEach(func(k, val lua.LValue) {
		if n, isNum := k.(lua.LNumber); isNum {
			idx := int(n)
			if float64(idx) == float64(n) && idx >= 1 && idx <= arrayLen {
				parts = append(parts, val.String())
				return
			}
		}
		parts = append(parts, fmt.Sprintf("%s = %s", k.String(), val.String()))
	})
	return strings.Join(parts, "\n")
}
