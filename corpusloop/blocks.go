package corpusloop

import "strings"

// BlockTag is the info string the root model must put on its code fences.
const BlockTag = "lua"

// ExtractBlocks returns the bodies of all fenced script blocks tagged with
// BlockTag, in textual order. An unterminated block is ignored: feeding a
// half-written script to the interpreter produces noise, not progress.
func ExtractBlocks(response string) []string {
	var blocks []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if trimmed == "```"+BlockTag {
				inBlock = true
				current = current[:0]
			}
			continue
		}
		if trimmed == "```" {
			blocks = append(blocks, strings.Join(current, "\n"))
			inBlock = false
			continue
		}
		current = append(current, line)
	}
	return blocks
}
