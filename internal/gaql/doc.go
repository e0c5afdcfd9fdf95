// Package gaql builds and inspects Google Ads Query Language statements.
//
// Queries are assembled from their clauses:
//
//	q := gaql.Query{
//	    Fields:     []string{"campaign.id", "campaign.name", "metrics.clicks"},
//	    Resource:   "campaign",
//	    Conditions: []string{"campaign.status = 'ENABLED'"},
//	    Orderings:  []string{"metrics.clicks DESC"},
//	    Limit:      10,
//	}
//	stmt, err := q.Build()
//
// SelectFields goes the other way and extracts the SELECT list of a raw
// statement, which is used as the attribute list for row normalization.
package gaql
