// Package corpusloop implements the recursive reasoning-over-corpus engine.
//
// A Session pairs a root reasoning model with a Lua execution environment
// holding a corpus too large for a single reasoning pass. Each iteration the
// root model's response is scanned for fenced lua script blocks, which run
// in order against the persistent environment; the captured output is fed
// back as an observation turn. Scripts can delegate bounded semantic
// sub-questions to a cheaper secondary model via the llm() helper. The loop
// ends when the response carries a recognized answer marker, when the
// iteration budget is exhausted, or when the root model call itself fails.
//
// # Architecture
//
//   - Session: the orchestrator holding conversation state, driving the
//     iterate / execute / observe loop, and enforcing budgets.
//   - luaenv.Environment: the script sandbox with the corpus, chunking
//     helpers, the sub-query callback, and a persistent namespace.
//   - Budget: iteration and sub-query ceilings plus token accumulation and
//     cost estimation against an injected price table.
//   - EventEmitter: typed event stream for host application integration.
//
// # Quick Start
//
//	client := llmclient.NewClientFromEnv()
//	corpus := luaenv.FromText(hugeDocument)
//	session := corpusloop.NewSession(client, corpus, nil)
//
//	result, err := session.Run(ctx, "Which chapter introduces the villain?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Answer)
package corpusloop
