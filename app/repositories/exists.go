package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/pkg/validate"
)

// existsTables are the tables the "exists" rule may query. Products honour
// soft deletion.
var existsTables = map[string]struct {
	columns     map[string]bool
	softDeletes bool
}{
	"categories": {columns: map[string]bool{"id": true, "name": true}},
	"products":   {columns: map[string]bool{"id": true}, softDeletes: true},
	"users":      {columns: map[string]bool{"id": true, "email": true}},
}

// NewExistenceChecker backs the validator's "exists:table,column" rule with
// a COUNT query.
func NewExistenceChecker(db *gorm.DB) validate.ExistsFunc {
	return func(ctx context.Context, table, column string, value any) (bool, error) {
		spec, ok := existsTables[table]
		if !ok || !spec.columns[column] {
			return false, fmt.Errorf("repositories: exists on %s.%s is not allowed", table, column)
		}

		if column == "id" {
			id, ok := validate.Int(value)
			if !ok || id < 1 {
				return false, nil
			}
			value = id
		}

		q := db.WithContext(ctx).Table(table).Where(column+" = ?", value)
		if spec.softDeletes {
			q = q.Where("deleted_at IS NULL")
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return false, fmt.Errorf("repositories: exists %s.%s: %w", table, column, err)
		}
		return n > 0, nil
	}
}
