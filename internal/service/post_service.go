package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"duskblog/internal/cache"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/observability"
	"duskblog/internal/repository"
	"duskblog/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// postsPerPage is the public listing page size. The dashboard view
// bypasses paging and returns everything.
const postsPerPage = 12

// PostService implements post listing and management.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	activity    *ActivityService
}

// PostPage is one page of the listing plus the category index.
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	Categories []string      `json:"categories"`
}

// CreatePostInput carries the fields of a post creation request.
type CreatePostInput struct {
	Title     string
	Category  string
	Content   string
	PostImage string
	Author    *models.User
}

// UpdatePostInput carries the fields of a post edit.
type UpdatePostInput struct {
	PostID    string
	Title     string
	Category  string
	Content   string
	PostImage string
	Editor    *models.User
}

// NewPostService creates a PostService.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, activity *ActivityService) *PostService {
	return &PostService{postRepo: postRepo, commentRepo: commentRepo, activity: activity}
}

// GetPages returns one page of posts together with the category index.
// dashboard skips paging entirely. An out-of-range or empty page is
// NotFound so the client can stop paging.
func (s *PostService) GetPages(ctx context.Context, page int, dashboard bool) (*PostPage, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.GetPages")
	defer span.End()
	span.AddAttributes(attribute.Int("page", page), attribute.Bool("dashboard", dashboard))

	variant := strconv.Itoa(page)
	skip, limit := int64(page-1)*postsPerPage, int64(postsPerPage)
	if dashboard {
		variant = "all"
		skip, limit = 0, 0
	} else if page < 1 {
		return nil, models.NewValidationError("Invalid page number")
	}

	result := new(PostPage)
	err := cache.Aside(ctx, cache.PostPagesKey(variant), result, cache.PostPagesTTL, func() error {
		posts, err := s.postRepo.List(ctx, skip, limit)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			return models.NewNotFoundError("Post", fmt.Sprintf("page %d", page))
		}
		categories, err := s.postRepo.Categories(ctx)
		if err != nil {
			return err
		}
		result.Posts = posts
		result.Categories = categories
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return result, nil
}

// GetByID returns the post after bumping its click counter. Every read
// counts as a view.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.IncrementClicks(ctx, id)
}

// Create stores a new post. The slug is derived from the title and the
// category defaults when blank. The activity entry is best-effort.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if validation.AnyBlank(in.Title, in.Content) {
		return nil, models.NewNotFoundError("Post", "title and content are required")
	}

	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}

	post := &models.Post{
		Title:         in.Title,
		Category:      category,
		Content:       in.Content,
		PostImage:     in.PostImage,
		Slug:          models.Slugify(in.Title),
		CreatedByUser: in.Author.ID.Hex(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, in.Author.ID, fmt.Sprintf("%s created a post: %s", in.Author.Username, post.Title))
	return post, nil
}

// Update replaces the editable fields and recomputes the slug so it
// always tracks the current title. Title, category and content are all
// required; only the image carries over when omitted.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if validation.AnyBlank(in.Title, in.Category, in.Content) {
		return nil, models.NewValidationError("Title, category and content are required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Slug = models.Slugify(in.Title)
	post.Category = in.Category
	post.CreatedByUser = in.Editor.ID.Hex()
	if in.PostImage != "" {
		post.PostImage = in.PostImage
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, in.Editor.ID, fmt.Sprintf("%s updated a post: %s", in.Editor.Username, post.Title))
	return post, nil
}

// Delete removes a post and cascades to its comments. The two deletes
// are separate writes; a crash in between leaves orphaned comments,
// which ListByPost tolerates.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	removed, err := s.commentRepo.DeleteByPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "post deleted",
		slog.String("post_id", postID),
		slog.String("title", post.Title),
		slog.Int64("comments_removed", removed),
	)
	return nil
}
