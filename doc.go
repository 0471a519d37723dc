/*
Package cstparse implements a parser for the Cedar policy language.

It converts policy source text into a Concrete Syntax Tree (CST) annotated
with precise byte-offset spans, and supports tolerant error recovery so that
several syntax errors in one input can be reported from a single parse.
Package structure is as follows:

■ cst: the CST data model — Node[T], Policies/Policy/Expr/... The Source
handle and Span type shared by every node are defined in this root package.

■ internal/lex: the lexer, tokenizing policy source into the token stream
consumed by the grammar engine.

■ parse: the grammar engine. Public entry points (Policies, Policy, Expr,
Primary, Name, Ref, Ident) drive the lexer and build CST values, performing
error recovery at the two declared sync points (policy body, expression).

■ cmd/cedarparse: a small interactive driver for exploring parses; it is a
client of the public API, not part of the core.

Lowering the CST to an AST, semantic validation, evaluation and the JSON
policy format are all out of scope for this module; they are external
collaborators that consume the CST this package produces.
*/
package cstparse
