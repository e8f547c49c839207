package core

// ---------- Expression Types ----------

// ColumnRef represents a column reference (possibly qualified).
type ColumnRef struct {
	Table  string // optional table/alias qualifier
	Column string
	Field  *Field // optional declared type of the column
}

func (*ColumnRef) exprNode() {}

// Kind implements Node.
func (*ColumnRef) Kind() string { return "column" }

// GetTable returns the table qualifier.
func (c *ColumnRef) GetTable() string { return c.Table }

// GetColumn returns the column name.
func (c *ColumnRef) GetColumn() string { return c.Column }

// Col is shorthand for an unqualified column reference.
func Col(name string) *ColumnRef { return &ColumnRef{Column: name} }

// Literal represents a literal value. Literals are always bound as
// parameters; a nil Value renders NULL.
type Literal struct {
	Value any
}

func (*Literal) exprNode() {}

// Kind implements Node.
func (*Literal) Kind() string { return "literal" }

// Val is shorthand for a literal value.
func Val(v any) *Literal { return &Literal{Value: v} }

// StringValue returns the literal's value if it is a string.
func (l *Literal) StringValue() (string, bool) {
	s, ok := l.Value.(string)
	return s, ok
}

// Raw is a SQL snippet emitted verbatim. Each "?" in SQL is replaced by the
// next element of Params, renumbered into the surrounding statement.
type Raw struct {
	SQL    string
	Params []any
}

func (*Raw) exprNode() {}

// Kind implements Node.
func (*Raw) Kind() string { return "raw" }

// FuncCall represents a function call.
type FuncCall struct {
	Name   string
	Args   []Expr
	Output *Field // optional declared result type
}

func (*FuncCall) exprNode() {}

// Kind implements Node.
func (*FuncCall) Kind() string { return "function call" }

// BinaryExpr represents a binary expression such as a = b or a AND b.
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// Kind implements Node.
func (*BinaryExpr) Kind() string { return "binary expression" }

// UnaryExpr represents a prefix operator such as NOT or unary minus.
type UnaryExpr struct {
	Op   string
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// Kind implements Node.
func (*UnaryExpr) Kind() string { return "unary expression" }

// IsNullExpr represents IS NULL / IS NOT NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// Kind implements Node.
func (*IsNullExpr) Kind() string { return "null test" }
