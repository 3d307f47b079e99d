// Command main runs the database seeder for Dusk Blog.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"duskblog/internal/config"
	"duskblog/internal/database"
	"duskblog/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	numComments := flag.Int("comments", 300, "Number of comments to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, %d comments, clean=%v\n",
		*numUsers, *numPosts, *numComments, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(ctx, seed.Options{
		Users:    *numUsers,
		Posts:    *numPosts,
		Comments: *numComments,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is now populated with demo data.")
	log.Println("All seeded users have the password: password123 (admin login: admin@duskblog.local)")
}
