package core

// ---------- Statement Types ----------

// NullsOrder controls NULLS FIRST / NULLS LAST in an ordering term.
type NullsOrder int

// NullsOrder values.
const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// OrderBy is one ORDER BY term. Its expression is compiled in ordering
// context.
type OrderBy struct {
	Expr  Expr
	Desc  bool
	Nulls NullsOrder
}

func (*OrderBy) exprNode() {}

// Kind implements Node.
func (*OrderBy) Kind() string { return "order by" }

// Asc is shorthand for an ascending ordering term.
func Asc(e Expr) *OrderBy { return &OrderBy{Expr: e} }

// Desc is shorthand for a descending ordering term.
func Desc(e Expr) *OrderBy { return &OrderBy{Expr: e, Desc: true} }

// Select is a single-table SELECT statement.
type Select struct {
	Table   string
	Columns []Expr // empty selects *
	Where   Expr
	OrderBy []*OrderBy
	Limit   int // 0 means no limit
}

func (*Select) stmtNode() {}

// Kind implements Node.
func (*Select) Kind() string { return "select" }

// Insert is a multi-row INSERT statement.
type Insert struct {
	Table     string
	Fields    []*Field // target columns; Field.Name is the column name
	Rows      [][]Expr
	Returning []string
}

func (*Insert) stmtNode() {}

// Kind implements Node.
func (*Insert) Kind() string { return "insert" }
