// Package openai provides classification and embedding adapters backed by
// the OpenAI API through github.com/sashabaranov/go-openai.
package openai
