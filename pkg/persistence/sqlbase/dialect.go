package sqlbase

import (
	"strconv"
	"strings"
	"time"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// Time converts a timestamp into the value bound for TIMESTAMP columns.
	Time func(t time.Time) any
}

// sortableTime is fixed width so that text comparison matches time order.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

var (
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		Time:        func(t time.Time) any { return t.UTC() },
	}
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		Time:        func(t time.Time) any { return t.UTC().Format(sortableTime) },
	}
)

// Rebind rewrites the ? markers of query into the dialect's placeholders.
func (d Dialect) Rebind(query string) string {
	var (
		builder strings.Builder
		n       int
	)

	builder.Grow(len(query))

	for _, r := range query {
		if r != '?' {
			builder.WriteRune(r)

			continue
		}

		n++
		builder.WriteString(d.Placeholder(n))
	}

	return builder.String()
}
