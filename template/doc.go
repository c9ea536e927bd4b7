// Package template implements a token-driven template interpreter.
//
// An [Interpreter] renders template text against a list of root objects. The
// text is tokenized into a flat stream of [token.Token] values (see package
// lexer for the default syntax), the stream is nested once into a tree of
// command bodies, and the tree is walked depth-first:
//
//   - literal text is copied to the output,
//   - expressions are evaluated against the variable [Scope] and their
//     string form is copied to the output (an unresolved expression renders
//     as nothing),
//   - commands are dispatched by name with their parsed arguments and body.
//
// # Commands
//
//	if       test=<bool or $ref> [var=<name>]
//	unless   test=<bool or $ref> [var=<name>]
//	set      [var=<name>] [value=<expr>] [target=<expr> property=<path>]
//	loop     items=<expr> [var=item] [varStatus=status] [begin=0] [end=count] [step=1]
//
// Each command is also reachable through its aliases; see [Commands].
//
// Argument values beginning with "$" are references into the scope. The
// value argument of set and the items argument of loop are always evaluated
// as expressions, so a string literal must be quoted for the expression
// language: value="'text'".
//
// # Scope
//
// Names are looked up in the frames pushed by enclosing commands, innermost
// first, then in the root objects as map keys, struct fields or niladic
// methods. The set command writes to the innermost frame, so a variable
// assigned inside a loop body disappears when the loop ends.
//
// # Errors
//
// Missing data never fails a render. The only errors are structural faults
// in the token stream ([ErrMissingBody], [ErrUnclosedBody], [ErrTokenRange])
// and cancellation of the render context ([ErrCanceled]).
package template
