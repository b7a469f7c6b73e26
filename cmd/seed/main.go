// Command seed fills the blog database with demo posts and comments.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/dgaponov99/practicum-my-blog/internal/config"
	"github.com/dgaponov99/practicum-my-blog/internal/database"
	"github.com/dgaponov99/practicum-my-blog/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum number of comments per post")
	maxTags := flag.Int("tags", 3, "Maximum number of tags per post")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	shouldClean := flag.Bool("clean", false, "Remove existing posts and comments before seeding")
	flag.Parse()

	log.Printf("Target: %d posts, up to %d comments each, clean=%v", *numPosts, *maxComments, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		Posts:       *numPosts,
		MaxComments: *maxComments,
		MaxTags:     *maxTags,
		RandomSeed:  *randomSeed,
		Clean:       *shouldClean,
	})
	res, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: created %d posts and %d comments", res.Posts, res.Comments)
}
