// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"duskblog/internal/database"
	"duskblog/internal/models"
	"duskblog/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// Options tunes the generated volume.
type Options struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder populates the database with generated users, posts and comments.
type Seeder struct {
	db       *database.Mongo
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	rng      *rand.Rand
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *database.Mongo) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll drops every seeded collection's documents.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if _, err := s.db.Comments.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := s.db.Posts.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := s.db.ActivityLogs.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if _, err := s.db.Users.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	log.Println("cleared existing data")
	return nil
}

// Run generates the requested volume of demo data. The first generated
// user is always an admin with a well-known login for local testing.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	posts, err := s.seedPosts(ctx, users, opts.Posts)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	if err := s.seedComments(ctx, users, posts, opts.Comments); err != nil {
		return fmt.Errorf("seed comments: %w", err)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username:       gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
			Email:          gofakeit.Email(),
			Password:       string(hashed),
			ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if i == 0 {
			user.Username = "admin"
			user.Email = "admin@duskblog.local"
			user.IsAdmin = true
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	categories := []string{"technology", "travel", "food", "lifestyle", models.DefaultCategory}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[0] // posts are admin-authored
		title := fmt.Sprintf("%s %d", gofakeit.Sentence(4), gofakeit.Number(1000, 9999))
		post := &models.Post{
			Title:         title,
			Slug:          models.Slugify(title),
			Content:       gofakeit.Paragraph(3, 5, 12, "\n\n"),
			Category:      categories[s.rng.Intn(len(categories))],
			PostImage:     fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
			Clicks:        int64(s.rng.Intn(500)),
			CreatedByUser: author.ID.Hex(),
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	log.Printf("seeded %d posts", len(posts))
	return posts, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, posts []*models.Post, n int) error {
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		post := posts[s.rng.Intn(len(posts))]
		comment := &models.Comment{
			PostID:  post.ID,
			UserID:  author.ID,
			Content: gofakeit.Sentence(s.rng.Intn(15) + 3),
		}
		// a sprinkle of votes
		for _, voter := range users {
			if s.rng.Intn(10) == 0 {
				comment.Likes = append(comment.Likes, voter.ID.Hex())
			} else if s.rng.Intn(20) == 0 {
				comment.Dislikes = append(comment.Dislikes, voter.ID.Hex())
			}
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
	}
	log.Printf("seeded %d comments", n)
	return nil
}
