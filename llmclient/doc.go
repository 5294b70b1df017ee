// Package llmclient provides a provider-agnostic client for blocking text
// completions against large-language-model backends.
//
// The corpus reasoning engine drives two models through this package: a root
// model that plans and writes scripts, and a cheaper secondary model that
// answers bounded sub-questions. Both go through the same Client, which
// routes requests to registered ProviderAdapters by provider name (or by
// model catalog lookup) and applies middleware such as retry.
//
// The package deliberately exposes only what the engine consumes: ordered
// role/text messages in, generated text plus token usage out. Streaming and
// provider tool protocols are out of scope.
package llmclient
