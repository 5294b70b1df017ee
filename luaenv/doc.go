// Package luaenv implements the script execution environment for the corpus
// reasoning engine.
//
// An Environment embeds a Lua interpreter (yuin/gopher-lua) whose global
// namespace persists across snippet executions within one session. The
// corpus is installed as a read-mostly global, alongside chunking helpers
// and an llm() callback that delegates semantic sub-questions to a cheaper
// secondary model.
//
// The key invariant of this package is that execution failures are data:
// Execute captures syntax errors, runtime errors, and panics as a structured
// Result and never propagates them to the caller. Printed output is captured
// and truncated to a configured limit with an explicit marker.
//
// This is not a hardened sandbox. Snippets run with the default Lua library
// set in the host process; isolation is a non-goal.
package luaenv
