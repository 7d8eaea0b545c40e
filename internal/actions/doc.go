// Package actions provides the built-in voice actions and the starter
// knowledge corpus. Actions are registered with the ActionRegistry at
// startup, before it is sealed.
package actions
