// Package convert turns structural models into target-language text.
//
// A RuleSet is built once per run from the language pair, the optimization
// level, the style variant and the custom mappings. Convert walks a model in
// pre-order and resolves every block through the custom table, then the
// default templates of the target, and finally falls back to a verbatim
// comment. Problems are reported as diagnostics; Convert itself never fails.
package convert
