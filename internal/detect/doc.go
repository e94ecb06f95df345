// Package detect assigns a language tag to a source file from its name and
// content. Detection is a pure function: the same name and bytes always yield
// the same tag.
//
// Policy, first match wins:
//   - a language hint supplied at ingestion;
//   - binary content is never a language;
//   - an unambiguous extension;
//   - the most specific content signature;
//   - keyword-frequency scoring above the confidence floor.
package detect
