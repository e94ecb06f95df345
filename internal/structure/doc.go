// Package structure builds the structural model of a source file.
//
// Three grammars cover the supported languages: brace delimited (Java, Go,
// JavaScript), indentation based (Python) and keyword pairs (COBOL). Each
// keeps open blocks on an explicit stack, so nesting depth is bounded only by
// memory. A structural fault never aborts analysis: the analyzer stops at the
// fault, keeps the blocks closed before it and reports exactly one error.
package structure
