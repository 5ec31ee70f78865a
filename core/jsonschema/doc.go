// Package jsonschema describes tool parameters as a small subset of JSON
// Schema and validates decoded tool arguments against it.
//
// A [Schema] is the wire shape sent to LLM providers inside a tool
// definition. Builders such as [Object], [String] and [Array] keep tool
// declarations short, and [Schema.Compile] turns a schema into a
// [Validator] backed by github.com/santhosh-tekuri/jsonschema/v6.
package jsonschema
