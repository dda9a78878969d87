package tneo

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// NewLogger builds the structured logger every KernelConfig.Logger
// expects: a logiface.Logger[*stumpy.Event] writing newline-delimited
// JSON to w, following logiface-stumpy's documented construction
// (stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(...)), ...)).
// level sets the minimum level that is actually written; use
// logiface.LevelInformational for routine operation or
// logiface.LevelTrace to see every scheduling decision.
func NewLogger(w io.Writer, level logiface.Level) *eventLog {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	)
}
