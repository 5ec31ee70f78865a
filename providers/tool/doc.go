// Package tool defines the callable tools an agent can offer to a language
// model.
//
// A [Tool] exposes a name, a description, a JSON schema for its arguments
// and a Call method taking the decoded arguments. [NewFuncTool] wraps a typed
// Go function, decoding arguments into its input struct with mapstructure.
//
// The [Catalog] type is the thread-safe tool table owned by an agent. It
// looks tools up case-insensitively, validates arguments against each tool's
// schema and reports [ErrToolNotFound] or [ErrInvalidArguments].
package tool
