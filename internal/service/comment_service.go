package service

import (
	"context"

	"duskblog/internal/cache"
	"duskblog/internal/models"
	"duskblog/internal/observability"
	"duskblog/internal/repository"
	"duskblog/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// CommentService implements comment management and voting.
type CommentService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

// CreateCommentInput carries the fields of a comment creation request.
type CreateCommentInput struct {
	PostID  string
	UserID  string
	Content string
}

// NewCommentService creates a CommentService.
func NewCommentService(commentRepo repository.CommentRepository, userRepo repository.UserRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, userRepo: userRepo}
}

// ListAll returns every comment; an empty store is NotFound per the
// endpoint contract.
func (s *CommentService) ListAll(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, models.NewNotFoundError("Comment", "any")
	}
	return comments, nil
}

// ListByPost returns a post's comments joined with their authors. A
// deleted author yields a nil User rather than dropping the comment.
// An empty result is returned as an empty slice, not an error.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.CommentWithAuthor, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.ListByPost")
	defer span.End()
	span.AddAttributes(attribute.String("post.id", postID))

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out := make([]models.CommentWithAuthor, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.CommentWithAuthor{
			Comment: c,
			User:    s.author(ctx, c.UserID.Hex()),
		})
	}
	return out, nil
}

// author resolves the cached author projection for a user, or nil when
// the account no longer exists.
func (s *CommentService) author(ctx context.Context, userID string) *models.CommentAuthor {
	var author models.CommentAuthor
	err := cache.Aside(ctx, cache.AuthorKey(userID), &author, cache.AuthorTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		author = user.Author()
		return nil
	})
	if err != nil {
		return nil
	}
	return &author
}

// Create stores a new comment with empty vote sets.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if validation.AnyBlank(in.Content) {
		return nil, models.NewValidationError("Comment content is required")
	}

	userID, err := models.ParseObjectID(in.UserID)
	if err != nil {
		return nil, models.NewValidationError("Invalid user id")
	}
	postID, err := models.ParseObjectID(in.PostID)
	if err != nil {
		return nil, models.NewValidationError("Invalid post id")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ToggleLike flips the user's membership in the like set and returns
// the new like count. Likes and dislikes are independent sets.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID string) (int, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return 0, err
	}
	comment.Likes = toggleMembership(comment.Likes, userID)
	if err := s.commentRepo.SetVotes(ctx, commentID, comment.Likes, comment.Dislikes); err != nil {
		return 0, err
	}
	return len(comment.Likes), nil
}

// ToggleDislike flips the user's membership in the dislike set and
// returns the new dislike count.
func (s *CommentService) ToggleDislike(ctx context.Context, commentID, userID string) (int, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return 0, err
	}
	comment.Dislikes = toggleMembership(comment.Dislikes, userID)
	if err := s.commentRepo.SetVotes(ctx, commentID, comment.Likes, comment.Dislikes); err != nil {
		return 0, err
	}
	return len(comment.Dislikes), nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	return s.commentRepo.Delete(ctx, id)
}

// toggleMembership removes id from the set when present, otherwise
// appends it.
func toggleMembership(set []string, id string) []string {
	for i, v := range set {
		if v == id {
			return append(set[:i], set[i+1:]...)
		}
	}
	return append(set, id)
}
