// Package translator turns stack-VM source into Hack assembly text.
//
// Pipeline: VM source → Lex → Parser (command dispatch) → Emitter → assembly text
//
// The Emitter is the only stateful piece: it owns the static namespace (the
// current file), the label scope (the current function) and the two label
// counters. Every run creates its own Emitter, so independent runs never
// share state.
package translator
