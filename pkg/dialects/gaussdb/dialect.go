package gaussdb

import (
	"github.com/pangpang20/gaussdb-django/pkg/dialect"
)

func init() {
	dialect.Register(GaussDB)
}

// gaussdbReservedWords contains the openGauss reserved keywords.
// Non-reserved keywords are accepted unquoted and are not listed.
var gaussdbReservedWords = []string{
	"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
	"asymmetric", "authid", "authorization", "between", "binary", "both",
	"buckets", "case", "cast", "check", "collate", "collation", "column",
	"concurrently", "constraint", "create", "cross", "csn",
	"current_catalog", "current_date", "current_role", "current_schema",
	"current_time", "current_timestamp", "current_user", "default",
	"deferrable", "desc", "distinct", "do", "else", "end", "except",
	"excluded", "false", "fetch", "for", "foreign", "freeze", "from", "full",
	"grant", "group", "groupparent", "having", "ilike", "in", "initially",
	"inner", "intersect", "into", "is", "isnull", "join", "leading", "left",
	"less", "like", "limit", "localtime", "localtimestamp", "maxvalue",
	"minus", "modify", "natural", "nlssort", "not", "notnull", "null",
	"offset", "on", "only", "or", "order", "outer", "overlaps",
	"performance", "placing", "primary", "procedure", "recyclebin",
	"references", "reject", "returning", "right", "rownum", "select",
	"session_user", "similar", "some", "symmetric", "sysdate", "table",
	"then", "to", "trailing", "true", "union", "unique", "user", "using",
	"variadic", "verbose", "verify", "when", "where", "window", "with",
}

// GaussDB is the GaussDB dialect.
var GaussDB = dialect.New(Config).
	WithReservedWords(gaussdbReservedWords...).
	Build()
