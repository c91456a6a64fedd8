package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/plan"
)

func samplePlan() *plan.Plan {
	return &plan.Plan{
		PredicateSQL: "(types ? :p0 AND cmc <= :p1)",
		Parameters: []plan.Param{
			{Name: ":p0", Value: fields.StringValue("creature")},
			{Name: ":p1", Value: fields.FloatValue(3)},
		},
		OrderBy: []plan.OrderTerm{{Column: "edhrec_rank", Direction: "asc", NullsLast: true}},
		Limit:   100,
	}
}

func TestBuildQueryQuestionStyle(t *testing.T) {
	sql, params := BuildQuery(samplePlan(), "cards", PlaceholderQuestion)
	assert.Equal(t, "SELECT * FROM cards WHERE (types ? ? AND cmc <= ?) ORDER BY edhrec_rank ASC NULLS LAST LIMIT 100", sql)
	assert.Len(t, params, 2)
}

func TestBuildQueryDollarStyle(t *testing.T) {
	sql, _ := BuildQuery(samplePlan(), "cards", PlaceholderDollar)
	assert.Equal(t, "SELECT * FROM cards WHERE (types ? $1 AND cmc <= $2) ORDER BY edhrec_rank ASC NULLS LAST LIMIT 100", sql)
}

func TestBuildQueryAtPStyle(t *testing.T) {
	sql, _ := BuildQuery(samplePlan(), "cards", PlaceholderAtP)
	assert.Equal(t, "SELECT * FROM cards WHERE (types ? @p1 AND cmc <= @p2) ORDER BY edhrec_rank ASC NULLS LAST LIMIT 100", sql)
}

func TestBuildQueryOmitsOrderByAndLimitWhenUnset(t *testing.T) {
	p := &plan.Plan{PredicateSQL: "(colors ? :p0)", Parameters: []plan.Param{{Name: ":p0", Value: fields.StringValue("R")}}}
	sql, _ := BuildQuery(p, "cards", PlaceholderQuestion)
	assert.Equal(t, "SELECT * FROM cards WHERE (colors ? ?)", sql)
}

// TestBuildQueryDoesNotCorruptDoubleDigitPlaceholders guards against a
// naive :p1-before-:p10 substring replace rewriting :p10's leading ":p1".
func TestBuildQueryDoesNotCorruptDoubleDigitPlaceholders(t *testing.T) {
	params := make([]plan.Param, 12)
	terms := make([]string, 12)
	for i := range params {
		name := fmt.Sprintf(":p%d", i)
		params[i] = plan.Param{Name: name, Value: fields.FloatValue(float64(i))}
		terms[i] = name + " > 0"
	}
	p := &plan.Plan{PredicateSQL: "(" + join(terms, " AND ") + ")", Parameters: params}

	sql, _ := BuildQuery(p, "cards", PlaceholderDollar)
	assert.Equal(t, "SELECT * FROM cards WHERE ($1 > 0 AND $2 > 0 AND $3 > 0 AND $4 > 0 AND $5 > 0 AND $6 > 0 AND $7 > 0 AND $8 > 0 AND $9 > 0 AND $10 > 0 AND $11 > 0 AND $12 > 0)", sql)
}

func join(terms []string, sep string) string {
	out := terms[0]
	for _, t := range terms[1:] {
		out += sep + t
	}
	return out
}
