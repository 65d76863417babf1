package service

import (
	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
)

// OwnershipGuard authorizes professor mutations on quizzes and their children.
type OwnershipGuard struct{}

// Authorize fails with Forbidden unless the quiz is owned by professorID.
// A quiz without a professor can't be modified through a professor route.
func (OwnershipGuard) Authorize(quiz *entities.Quiz, professorID int64) error {
	if !quiz.OwnedBy(professorID) {
		return apperr.Errorf(apperr.KindForbidden, "professor %d is not allowed to modify quiz %d", professorID, quiz.ID)
	}
	return nil
}
