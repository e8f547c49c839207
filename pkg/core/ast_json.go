package core

import "strconv"

// ---------- JSON and Cast Types ----------

// JSONArray builds a JSON array from its arguments.
type JSONArray struct {
	Args []Expr
}

func (*JSONArray) exprNode() {}

// Kind implements Node.
func (*JSONArray) Kind() string { return "json array" }

// JSONObject builds a JSON object from alternating key, value arguments.
type JSONObject struct {
	Args []Expr
}

func (*JSONObject) exprNode() {}

// Kind implements Node.
func (*JSONObject) Kind() string { return "json object" }

// Key is one step of a JSON key path: an object member name or an array index.
type Key struct {
	Name    string
	Index   int
	IsIndex bool
}

// NameKey returns an object member key.
func NameKey(name string) *Key { return &Key{Name: name} }

// IndexKey returns an array index key.
func IndexKey(i int) *Key { return &Key{Index: i, IsIndex: true} }

// String returns the key as written in a lookup path.
func (k *Key) String() string {
	if k.IsIndex {
		return strconv.Itoa(k.Index)
	}
	return k.Name
}

// KeyTransform is one step of a JSON key-path lookup. Chains are built by
// nesting: the LHS of a step is the previous step or the base expression.
//
// Key may be nil when the LHS is a JSON object literal, in which case the
// key is the literal's first argument.
type KeyTransform struct {
	Key    *Key
	LHS    Expr
	Output *Field // declared type of the looked-up value; nil means JSON

	// Truthy marks a lookup used as a boolean ("key is present").
	Truthy bool
	// Negated asks for the boolean variant inverted ("key is absent"). It
	// implies Truthy.
	Negated bool
}

func (*KeyTransform) exprNode() {}

// Kind implements Node.
func (*KeyTransform) Kind() string { return "key transform" }

// Lookup builds a key-path chain over base, one KeyTransform per key.
func Lookup(base Expr, keys ...*Key) Expr {
	e := base
	for _, k := range keys {
		e = &KeyTransform{Key: k, LHS: e}
	}
	return e
}

// Cast converts Expr to a target type. The target is TypeName when set,
// otherwise the database type of Output.
type Cast struct {
	Expr     Expr
	TypeName string
	Output   *Field
}

func (*Cast) exprNode() {}

// Kind implements Node.
func (*Cast) Kind() string { return "cast" }

// HasKey tests that a JSON object has a top-level key.
type HasKey struct {
	LHS Expr
	Key Expr
}

func (*HasKey) exprNode() {}

// Kind implements Node.
func (*HasKey) Kind() string { return "has key" }

// HasKeys tests that a JSON object has all of the given keys.
type HasKeys struct {
	LHS  Expr
	Keys []Expr
}

func (*HasKeys) exprNode() {}

// Kind implements Node.
func (*HasKeys) Kind() string { return "has keys" }

// HasAnyKeys tests that a JSON object has at least one of the given keys.
type HasAnyKeys struct {
	LHS  Expr
	Keys []Expr
}

func (*HasAnyKeys) exprNode() {}

// Kind implements Node.
func (*HasAnyKeys) Kind() string { return "has any keys" }
