// internal/suggestions/models.go

package suggestions

import "time"

// Suggestion is a catalog entry: an activity or venue that events can be
// planned around. Attributes are free-form key/value pairs (e.g.
// cuisine=thai, noise=quiet) that the recommendation engine matches against
// learned preference weights.
type Suggestion struct {
	ID         int64             `json:"id" db:"id"`
	Name       string            `json:"name" db:"name"`
	Category   string            `json:"category" db:"category"`
	Attributes map[string]string `json:"attributes"`
	CreatedBy  int64             `json:"created_by" db:"created_by"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}
