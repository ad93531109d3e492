// Package schema describes node sockets and validates wiring against them.
//
// A Schema lists ordered inputs and outputs with socket types from package
// socket. Declared schemas may carry templates (<T>) and variadic group
// placeholders (value#COUNT); resolved schemas have both materialized.
//
//	s := schema.Schema{
//	    Inputs:  []schema.Input{{Name: "value#COUNT", Type: socket.Template("T"), Optional: true}},
//	    Outputs: []schema.Output{{Name: "list", Type: socket.Qualified("LIST", "T")}},
//	}
//
// Validation failures are values: a ValidationError per socket, collected in
// an AggregateError.
package schema
