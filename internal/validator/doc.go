// Package validator decides whether a document may be submitted for analysis.
// It looks only at the declared media type and the size; it performs no I/O.
package validator
