// Package app wires stores, services and the relay client together for
// the courier CLI.
package app
