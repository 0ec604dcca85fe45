package validation

import (
	"context"

	log "github.com/sirupsen/logrus"

	"tamuroo-server/internal/store"
)

// UniquenessScope is the storage lookup a uniqueness check runs against.
type UniquenessScope interface {
	Exists(ctx context.Context, field store.UserField, value string) (bool, error)
}

// Unique reports whether no record in scope holds value for field.
// A failing lookup counts as not unique.
func Unique(ctx context.Context, value, field string, scope UniquenessScope) Outcome {
	exists, err := scope.Exists(ctx, store.UserField(field), value)
	if err != nil {
		log.WithField("field", field).Error("Uniqueness check failed: ", err)
		return Outcome{
			Rule:    RuleUnique,
			Message: "Error checking " + field + " uniqueness",
		}
	}

	return Outcome{
		Rule:    RuleUnique,
		Valid:   !exists,
		Message: field + " already exists",
	}
}
