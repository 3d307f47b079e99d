package service

import (
	"context"
	"testing"

	"duskblog/internal/mail"
	"duskblog/internal/models"

	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn              func(context.Context, string) (*models.User, error)
	getByEmailFn           func(context.Context, string) (*models.User, error)
	getByUsernameOrEmailFn func(context.Context, string, string) (*models.User, error)
	getAdminFn             func(context.Context) (*models.User, error)
	createFn               func(context.Context, *models.User) error
	updateFn               func(context.Context, *models.User) error
	setRefreshTokenFn      func(context.Context, string, string) error
	clearRefreshTokenFn    func(context.Context, string) error
	setPasswordFn          func(context.Context, string, string) error
	deleteFn               func(context.Context, string) error
	listFn                 func(context.Context) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return s.getByUsernameOrEmailFn(ctx, username, email)
}
func (s *userRepoStub) GetAdmin(ctx context.Context) (*models.User, error) {
	return s.getAdminFn(ctx)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) SetRefreshToken(ctx context.Context, id, token string) error {
	return s.setRefreshTokenFn(ctx, id, token)
}
func (s *userRepoStub) ClearRefreshToken(ctx context.Context, id string) error {
	return s.clearRefreshTokenFn(ctx, id)
}
func (s *userRepoStub) SetPassword(ctx context.Context, id, hash string) error {
	return s.setPasswordFn(ctx, id, hash)
}
func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context) ([]models.User, error) {
	return s.listFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:              func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:           func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameOrEmailFn: func(_ context.Context, _, _ string) (*models.User, error) { return nil, nil },
		getAdminFn:             func(_ context.Context) (*models.User, error) { return &models.User{}, nil },
		createFn:               func(_ context.Context, _ *models.User) error { return nil },
		updateFn:               func(_ context.Context, _ *models.User) error { return nil },
		setRefreshTokenFn:      func(_ context.Context, _, _ string) error { return nil },
		clearRefreshTokenFn:    func(_ context.Context, _ string) error { return nil },
		setPasswordFn:          func(_ context.Context, _, _ string) error { return nil },
		deleteFn:               func(_ context.Context, _ string) error { return nil },
		listFn:                 func(_ context.Context) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	getByIDFn         func(context.Context, string) (*models.Post, error)
	incrementClicksFn func(context.Context, string) (*models.Post, error)
	listFn            func(context.Context, int64, int64) ([]models.Post, error)
	categoriesFn      func(context.Context) ([]string, error)
	createFn          func(context.Context, *models.Post) error
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, string) error
}

func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) IncrementClicks(ctx context.Context, id string) (*models.Post, error) {
	return s.incrementClicksFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return s.listFn(ctx, skip, limit)
}
func (s *postRepoStub) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		getByIDFn:         func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		incrementClicksFn: func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listFn:            func(_ context.Context, _, _ int64) ([]models.Post, error) { return nil, nil },
		categoriesFn:      func(_ context.Context) ([]string, error) { return nil, nil },
		createFn:          func(_ context.Context, _ *models.Post) error { return nil },
		updateFn:          func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:          func(_ context.Context, _ string) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	getByIDFn      func(context.Context, string) (*models.Comment, error)
	listAllFn      func(context.Context) ([]models.Comment, error)
	listByPostFn   func(context.Context, string) ([]models.Comment, error)
	createFn       func(context.Context, *models.Comment) error
	setVotesFn     func(context.Context, string, []string, []string) error
	deleteFn       func(context.Context, string) error
	deleteByPostFn func(context.Context, string) (int64, error)
}

func (s *commentRepoStub) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListAll(ctx context.Context) ([]models.Comment, error) {
	return s.listAllFn(ctx)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) SetVotes(ctx context.Context, id string, likes, dislikes []string) error {
	return s.setVotesFn(ctx, id, likes, dislikes)
}
func (s *commentRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	return s.deleteByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		getByIDFn:      func(_ context.Context, _ string) (*models.Comment, error) { return &models.Comment{}, nil },
		listAllFn:      func(_ context.Context) ([]models.Comment, error) { return nil, nil },
		listByPostFn:   func(_ context.Context, _ string) ([]models.Comment, error) { return nil, nil },
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		setVotesFn:     func(_ context.Context, _ string, _, _ []string) error { return nil },
		deleteFn:       func(_ context.Context, _ string) error { return nil },
		deleteByPostFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// activityRepoStub is a stub for repository.ActivityLogRepository.
type activityRepoStub struct {
	createFn  func(context.Context, *models.ActivityLog) error
	listAllFn func(context.Context) ([]models.ActivityLog, error)
}

func (s *activityRepoStub) Create(ctx context.Context, entry *models.ActivityLog) error {
	return s.createFn(ctx, entry)
}
func (s *activityRepoStub) ListAll(ctx context.Context) ([]models.ActivityLog, error) {
	return s.listAllFn(ctx)
}

func noopActivityRepo() *activityRepoStub {
	return &activityRepoStub{
		createFn:  func(_ context.Context, _ *models.ActivityLog) error { return nil },
		listAllFn: func(_ context.Context) ([]models.ActivityLog, error) { return nil, nil },
	}
}

// mailerStub records sent messages instead of delivering them.
type mailerStub struct {
	sent []mail.Message
	err  error
}

func (m *mailerStub) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}
