package repository

import "github.com/mylearnapp/quiz-platform/internal/apperr"

var (
	ErrOptimisticLock = apperr.Conflict("quiz attempt was modified by another process")
	ErrTopicNameTaken = apperr.Conflict("topic name already exists")
	ErrClerkIDTaken   = apperr.Conflict("user with this clerk id already exists")
)
