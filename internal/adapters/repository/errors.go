package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres constraint names from the migrations. Unique violations are
// translated into domain errors so callers never see driver errors.
const (
	constraintUsername  = "users_username_key"
	constraintEmail     = "users_email_key"
	constraintGroupName = "groups_owner_name_idx"
	constraintTaskTitle = "tasks_owner_group_title_idx"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolationCode && pqErr.Constraint == constraint
}
