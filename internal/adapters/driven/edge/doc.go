// Package edge calls the hosted backend's edge functions: classify-intent for
// intent classification and generate-embedding for knowledge embeddings.
//
// Every request carries the project key both as a bearer token and as the
// apikey header, and is throttled by a shared token bucket that also honours
// Retry-After on 429 replies.
package edge
