// Package normalisers holds the text handling shared by the core and the
// view generators. The markdown subpackage recognises headings and splits
// documents into sections without building an AST.
package normalisers
