// Package completion wraps the external text-completion capability.
//
// Two backends implement the same Client contract: an OpenAI-compatible
// chat-completions endpoint (the default, selected by completion.provider
// "openai" in config) and the Anthropic Messages API ("anthropic"). Both
// bound each call at 30 seconds and wrap failures in ErrUnavailable; calls
// are never retried - an inability to judge confidence defaults to the safe
// path of human handoff upstream.
package completion
