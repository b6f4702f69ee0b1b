package postgres

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
)

// DSN builds a keyword/value connection string. Values are inserted verbatim,
// so a value containing a space or '=' yields a broken string.
func DSN(ip, port, db, user, password string) string {
	return fmt.Sprintf("hostaddr=%s port=%s dbname=%s user=%s password=%s", ip, port, db, user, password)
}

// URI builds a postgresql:// connection string. Only the password is escaped.
func URI(ip, port, db, user, password string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", user, EscapeUserinfo(password), ip, port, db)
}

// EscapeUserinfo percent-encodes every byte outside the RFC 3986 unreserved set
func EscapeUserinfo(s string) string {
	// QueryEscape keeps exactly the unreserved set but writes spaces as '+';
	// a literal '+' is already %2B at this point.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// QualifiedName renders schema.name with both parts quoted as identifiers
func QualifiedName(schema, name string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(name)
}
