// Package services holds the voice pipeline's core logic behind the driving
// ports: knowledge search and import, intent classification, the action
// registry, per-user voice sessions, response synthesis, settings and
// background maintenance.
//
// Services only talk to infrastructure through driven ports, so every
// external call (classifier, store, handler) can be swapped for a mock.
package services
