package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"duskblog/internal/auth"
	"duskblog/internal/config"
	"duskblog/internal/mail"
	"duskblog/internal/middleware"
	"duskblog/internal/models"
	"duskblog/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserRepo is an in-memory repository.UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetAdmin(_ context.Context) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.IsAdmin {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Admin", "any")
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.NewConflictError("User with this email or username already exists")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	r.users[user.ID.Hex()] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID.Hex()]; !ok {
		return models.NewNotFoundError("User", user.ID.Hex())
	}
	cp := *user
	r.users[user.ID.Hex()] = &cp
	return nil
}

func (r *memUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	u.RefreshToken = token
	return nil
}

func (r *memUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	return r.SetRefreshToken(context.Background(), id, "")
}

func (r *memUserRepo) SetPassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	u.Password = hash
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

// memPostRepo is an in-memory repository.PostRepository.
type memPostRepo struct {
	mu    sync.Mutex
	posts []*models.Post
}

func (r *memPostRepo) find(id string) *models.Post {
	for _, p := range r.posts {
		if p.ID.Hex() == id {
			return p
		}
	}
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.find(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *memPostRepo) IncrementClicks(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.find(id); p != nil {
		p.Clicks++
		cp := *p
		return &cp, nil
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *memPostRepo) List(_ context.Context, skip, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *p)
	}
	if limit <= 0 {
		return out, nil
	}
	if skip >= int64(len(out)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[skip:end], nil
}

func (r *memPostRepo) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	for _, p := range r.posts {
		seen[p.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Title == post.Title || p.Slug == post.Slug {
			return models.NewConflictError("Post with this title already exists")
		}
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	cp := *post
	r.posts = append(r.posts, &cp)
	return nil
}

func (r *memPostRepo) Update(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.find(post.ID.Hex()); p != nil {
		*p = *post
		return nil
	}
	return models.NewNotFoundError("Post", post.ID.Hex())
}

func (r *memPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID.Hex() == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Post", id)
}

// memCommentRepo is an in-memory repository.CommentRepository.
type memCommentRepo struct {
	mu       sync.Mutex
	comments []*models.Comment
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID.Hex() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func (r *memCommentRepo) ListAll(_ context.Context) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Comment, 0, len(r.comments))
	for _, c := range r.comments {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.PostID.Hex() == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	if comment.Dislikes == nil {
		comment.Dislikes = []string{}
	}
	cp := *comment
	r.comments = append(r.comments, &cp)
	return nil
}

func (r *memCommentRepo) SetVotes(_ context.Context, id string, likes, dislikes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID.Hex() == id {
			c.Likes = likes
			c.Dislikes = dislikes
			return nil
		}
	}
	return models.NewNotFoundError("Comment", id)
}

func (r *memCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.comments {
		if c.ID.Hex() == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Comment", id)
}

func (r *memCommentRepo) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.Comment
	var removed int64
	for _, c := range r.comments {
		if c.PostID.Hex() == postID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return removed, nil
}

// memActivityRepo is an in-memory repository.ActivityLogRepository.
type memActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (r *memActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memActivityRepo) ListAll(_ context.Context) ([]models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ActivityLog{}, r.entries...), nil
}

// recordingMailer collects sent mail instead of delivering it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// testEnv bundles a wired server, app and its backing fakes.
type testEnv struct {
	app      *fiber.App
	srv      *Server
	users    *memUserRepo
	posts    *memPostRepo
	comments *memCommentRepo
	activity *memActivityRepo
	mailer   *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Port:               "0",
		Env:                "test",
		FrontendURL:        "http://localhost:5173",
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    10 * time.Hour,
		CookieSameSite:     "Lax",
	}

	users := newMemUserRepo()
	posts := &memPostRepo{}
	comments := &memCommentRepo{}
	activity := &memActivityRepo{}
	mailer := &recordingMailer{}

	tokens := auth.NewTokenService(users,
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	session := middleware.NewSession(tokens, users, middleware.CookieOptions{
		SameSite: cfg.CookieSameSite,
	})

	srv := &Server{
		config:       cfg,
		tokens:       tokens,
		session:      session,
		userRepo:     users,
		postRepo:     posts,
		commentRepo:  comments,
		activityRepo: activity,
	}
	srv.activityService = service.NewActivityService(activity)
	srv.userService = service.NewUserService(users, mailer, cfg.FrontendURL, cfg.AdminEmail)
	srv.postService = service.NewPostService(posts, comments, srv.activityService)
	srv.commentService = service.NewCommentService(comments, users)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{
		app:      app,
		srv:      srv,
		users:    users,
		posts:    posts,
		comments: comments,
		activity: activity,
		mailer:   mailer,
	}
}

// signup registers a user through the API and returns the created user.
func (e *testEnv) signup(t *testing.T, username, email, password, role string) *models.User {
	t.Helper()
	resp := e.request(t, fiber.MethodPost, "/user/signup", fiber.Map{
		"username": username,
		"email":    email,
		"password": password,
		"role":     role,
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	user, err := e.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

// login authenticates through the API and returns the session cookies.
func (e *testEnv) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	resp := e.request(t, fiber.MethodPost, "/user/login", fiber.Map{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return resp.Cookies()
}

// request performs an API call with an optional JSON body and cookies.
func (e *testEnv) request(t *testing.T, method, path string, body any, cookies []*http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
