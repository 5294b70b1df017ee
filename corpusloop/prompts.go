package corpusloop

import (
	"fmt"
	"strings"

	"github.com/martinemde/corpusagent/luaenv"
)

const rootBasePrompt = `You are answering a question about a corpus that is too large to read in
one pass. You cannot see the corpus directly; instead you write small Lua
scripts that inspect it, and you see their printed output on the next turn.

Rules:
- Put every script in a fenced block tagged ` + "```" + BlockTag + `. Blocks run in order
  against a persistent namespace: variables you assign survive to later
  turns.
- Inspect the corpus incrementally. Print only what you need; output is
  truncated beyond a limit.
- Use llm(prompt) for semantic questions a script cannot answer (summaries,
  classification, extraction from a chunk). Keep prompts small and include
  the relevant text in the prompt. llm() calls are budgeted; when the
  budget is exhausted it returns a notice instead of an answer.
- When you know the answer, end your response with FINAL(answer text) or,
  if the answer is held in a variable, FINAL_VAR(variable_name). Blocks in
  the same response run before the marker is read, so a block may compute
  the variable FINAL_VAR names.

Available globals:
- corpus: the full corpus text (string)
- documents: ordered document list (table), when the corpus is a list
- chunk(text, size): split into fixed-size character chunks (table)
- chunk_lines(text, n): split into chunks of n lines each (table)
- llm(prompt): ask the secondary model, returns its answer (string)
- print(...): captured and shown to you next turn

Example:

` + "```" + BlockTag + `
local chunks = chunk(corpus, 4000)
print(#chunks)
print(chunks[1]:sub(1, 200))
` + "```" + `

Then, after seeing output across turns:

FINAL(The report covers Q3 2025 logistics incidents)`

// BuildSystemPrompt constructs the root model's system prompt from the
// environment and session configuration.
func BuildSystemPrompt(env *luaenv.Environment, cfg Config) string {
	var sb strings.Builder
	sb.WriteString(rootBasePrompt)
	sb.WriteString("\n\n<environment>\n")
	fmt.Fprintf(&sb, "Corpus: %s\n", env.Corpus().Describe())
	fmt.Fprintf(&sb, "Output limit per execution: %d characters\n", env.OutputLimit())
	fmt.Fprintf(&sb, "Iteration budget: %d\n", cfg.MaxIterations)
	fmt.Fprintf(&sb, "Sub-query budget: %d\n", cfg.MaxSubQueries)
	sb.WriteString("</environment>")
	return sb.String()
}

// subQuerySystemPrompt frames the secondary model's task: bounded answers,
// no protocol of its own.
const subQuerySystemPrompt = `You answer one focused question about the text included in the prompt.
Answer directly and concisely. Do not ask follow-up questions.`
