// ABOUTME: Provider is the content-synthesis contract consumed by the response generator
// ABOUTME: PlaceholderProvider is the deterministic offline provider echoing the query
package llm

import (
	"sort"
	"time"

	"github.com/harper/amb/internal/models"
	"github.com/harper/amb/internal/util"
)

// ContextSource is the source reference stamped on data points drawn from request context
const ContextSource = "context"

// Constraints tighten a regeneration after a draft failed validation
type Constraints struct {
	AvoidPatterns  []string `json:"avoid_patterns"`
	RequireSources bool     `json:"require_sources"`
	MaxLength      int      `json:"max_length"`
}

// Provider produces unvalidated drafts. Constraints is nil on the first attempt.
type Provider interface {
	Draft(query string, context map[string]any, constraints *Constraints) (*models.Draft, error)
}

// PlaceholderProvider answers every query with a fixed echo and one data point
// per non-nil context value
type PlaceholderProvider struct {
	now func() time.Time
}

// NewPlaceholderProvider creates the offline provider
func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{now: func() time.Time { return time.Now().UTC() }}
}

// Draft implements Provider
func (p *PlaceholderProvider) Draft(query string, context map[string]any, constraints *Constraints) (*models.Draft, error) {
	now := p.now()

	content := "Response to: " + query
	if constraints != nil && constraints.MaxLength > 0 {
		content = util.Snippet(content, constraints.MaxLength)
	}

	return &models.Draft{
		Content: content,
		Data:    ContextDataPoints(context, now),
		Metadata: map[string]any{
			"timestamp":        now.Format(time.RFC3339Nano),
			"query":            query,
			"context_provided": len(context) > 0,
		},
	}, nil
}

// ContextDataPoints turns non-nil context values into data points, ordered by key
func ContextDataPoints(context map[string]any, ts time.Time) []models.DataPoint {
	keys := make([]string, 0, len(context))
	for k, v := range context {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	points := make([]models.DataPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, models.DataPoint{
			Key:       k,
			Value:     context[k],
			Source:    ContextSource,
			Timestamp: ts,
		})
	}
	return points
}
