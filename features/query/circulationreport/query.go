package circulationreport

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	queryType = "CirculationReport"
)

// Query represents the intent to build a circulation report.
type Query struct {
	GeneratedAt time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(generatedAt time.Time) Query {
	return Query{GeneratedAt: circulation.ToTimestamp(generatedAt)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
