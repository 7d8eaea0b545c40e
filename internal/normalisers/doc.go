// Package normalisers turns member handbooks, FAQs and exported pages into
// knowledge documents. Each normaliser handles a set of file extensions;
// the Registry picks one by extension and falls back to plain text.
package normalisers
