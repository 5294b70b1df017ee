package luaenv

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// luaChunk implements chunk(text, size): split text into fixed-size
// character chunks. The final chunk may be shorter.
func luaChunk(L *lua.LState) int {
	text := L.CheckString(1)
	size := L.CheckInt(2)
	if size < 1 {
		L.ArgError(2, "chunk size must be at least 1")
		return 0
	}

	tbl := L.NewTable()
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		tbl.Append(lua.LString(text[start:end]))
	}
	L.Push(tbl)
	return 1
}

// luaChunkLines implements chunk_lines(text, n): split text into chunks of
// n lines each. The final chunk may hold fewer lines.
func luaChunkLines(L *lua.LState) int {
	text := L.CheckString(1)
	n := L.CheckInt(2)
	if n < 1 {
		L.ArgError(2, "line count must be at least 1")
		return 0
	}

	lines := strings.Split(text, "\n")
	tbl := L.NewTable()
	for start := 0; start < len(lines); start += n {
		end := start + n
		if end > len(lines) {
			end = len(lines)
		}
		tbl.Append(lua.LString(strings.Join(lines[start:end], "\n")))
	}
	L.Push(tbl)
	return 1
}
