package compiler

import (
	"fmt"
	"strings"
)

// Context carries per-node compilation state down the tree. It is passed by
// value, so a flag set for one subtree never leaks into a sibling or into a
// later compilation.
type Context struct {
	// Ordering is set for the direct child of an ORDER BY term.
	Ordering bool
	// ForceText asks for a text-typed result.
	ForceText bool

	// rawJSON keeps key lookups as uncoerced JSON values (key-test operands).
	rawJSON bool
}

// OrderingCoercion decides how a key lookup declared numeric is coerced when
// it is also in ordering context.
type OrderingCoercion int

const (
	// NumericFirst coerces declared-numeric lookups to numeric everywhere,
	// including ORDER BY. Other lookups in ORDER BY are coerced to text.
	NumericFirst OrderingCoercion = iota
	// OrderingText coerces every lookup in ORDER BY to text; numeric
	// coercion applies only outside ordering context.
	OrderingText
)

var coercionNames = map[OrderingCoercion]string{
	NumericFirst: "numeric_first",
	OrderingText: "ordering_text",
}

// String returns the configuration name of the policy.
func (o OrderingCoercion) String() string {
	if s, ok := coercionNames[o]; ok {
		return s
	}
	return "unknown"
}

// ParseOrderingCoercion parses a policy name. The empty string selects
// NumericFirst.
func ParseOrderingCoercion(s string) (OrderingCoercion, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return NumericFirst, nil
	}
	for policy, n := range coercionNames {
		if n == name {
			return policy, nil
		}
	}
	return NumericFirst, fmt.Errorf("unknown ordering coercion %q (want numeric_first or ordering_text)", s)
}
