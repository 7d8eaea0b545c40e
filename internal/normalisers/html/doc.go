// Package html provides a Normaliser for exported web pages. It keeps the
// readable text and drops scripts, styles and markup.
package html
