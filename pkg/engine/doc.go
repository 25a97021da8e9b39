// Package engine runs conversation turns: the model is consulted with the
// conversation so far and the tool catalog, any tool calls it requests are
// executed through the tool client, and the model is consulted again until
// it answers without requesting tools.
//
// A turn is capped at Config.MaxTurns model rounds; hitting the cap returns
// an error wrapping ErrLoopExceeded.
package engine
