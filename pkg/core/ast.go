package core

// Node is the base interface for all tree nodes.
type Node interface {
	// Kind names the node kind in diagnostics (e.g. "key transform").
	Kind() string
}

// Expr is a marker interface for expression nodes.
//
// The marker method is unexported, so the set of expression kinds is closed
// to this package. Compilers switch over the concrete types exhaustively.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}
