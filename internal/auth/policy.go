package auth

import "duskblog/internal/models"

// Action identifies a protected operation for policy evaluation.
type Action string

const (
	ActionUpdateUser       Action = "user:update"
	ActionDeleteUser       Action = "user:delete"
	ActionSignOut          Action = "user:signout"
	ActionListUsers        Action = "user:list"
	ActionDeleteAnyUser    Action = "user:delete-any"
	ActionCreatePost       Action = "post:create"
	ActionUpdatePost       Action = "post:update"
	ActionDeletePost       Action = "post:delete"
	ActionCreateComment    Action = "comment:create"
	ActionVoteComment      Action = "comment:vote"
	ActionDeleteAnyComment Action = "comment:delete-any"
	ActionViewActivityLog  Action = "log:view"
)

// Authorize is the pure authorization decision: given the principal, an
// action and the id the action targets, it returns nil to allow or a
// Forbidden error to deny. It performs no I/O.
//
// targetID means: the resource owner's user id for self actions, the
// claimed author id for comment creation, and the userId supplied in
// the request body for votes. Admin-only actions ignore it.
func Authorize(p Principal, action Action, targetID string) error {
	switch action {
	case ActionUpdateUser, ActionDeleteUser, ActionSignOut:
		if p.ID == targetID {
			return nil
		}
	case ActionListUsers, ActionDeleteAnyUser, ActionCreatePost,
		ActionUpdatePost, ActionDeletePost, ActionDeleteAnyComment,
		ActionViewActivityLog:
		if p.IsAdmin {
			return nil
		}
	case ActionCreateComment:
		if p.ID == targetID {
			return nil
		}
	case ActionVoteComment:
		// Both the session and the userId supplied in the body must
		// name the same user.
		if p.ID == targetID {
			return nil
		}
	}
	return models.NewForbiddenError("You are not allowed to perform this action")
}
