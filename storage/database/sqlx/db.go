package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// validIDs drops ids that are not UUIDs, which postgres would refuse to cast.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}
