// Package ast provides the typed term model for policy engine compile
// results and the rules to decode it from JSON.
//
// The compile API answers a partial-evaluation request with a residual
// expression: a disjunction of bodies, each a conjunction of expressions,
// each expression a short sequence of terms. This package only decodes;
// it assigns no meaning to the terms (see package translate).
//
// SEALED INTERFACES:
//
// Term is a sealed interface using the marker method pattern, mirroring the
// engine's wire grammar:
//
//	"ref"     Ref      path or function designator
//	"var"     Var      variable name
//	"string"  String
//	"number"  Number   literal text preserved (integral or fractional)
//	"boolean" Boolean
//	"array"   Array    elements in wire order
//	"set"     Set      duplicate-free elements
//	"call"    Call     designator followed by operands
//
// Consumers switch exhaustively over these eight types. Adding a kind is a
// change to every such switch.
//
// DECODING:
//
// Every term node is dispatched on its "type" field before its "value" is
// read. An unknown type or a null value is a decode failure, never a guess.
// Element kinds of arrays and sets are left to the translator. Fields that the
// engine emits as either a single term or a list of terms use the Terms type,
// which always decodes to a one-or-more element slice.
//
// All decode failures wrap ErrDecode.
package ast
