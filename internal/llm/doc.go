// Package llm provides the text oracle used to categorize expenses. A Client
// sends one prompt to a language model provider (Anthropic, OpenAI or Gemini)
// and returns the raw reply; interpreting that reply is left to the caller.
package llm
