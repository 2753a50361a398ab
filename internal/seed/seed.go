// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"verseflow/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var (
	quoteAuthors = []string{
		"Emily Dickinson", "Rainer Maria Rilke", "Matsuo Bashō", "Sappho",
		"Fernando Pessoa", "Anna Akhmatova", "Pablo Neruda", "Mary Oliver",
		"W. B. Yeats", "Wisława Szymborska", "Li Bai", "Rumi",
	}

	openings = []string{
		"at the edge of the orchard", "after the long rain", "in the blue hour",
		"under a thin moon", "past the last streetlight", "before the frost",
		"between two silences", "where the river narrows", "in the empty station",
		"at the end of august", "beneath the cedar", "after everyone left",
	}

	images = []string{
		"the light going out of the grass", "a window full of winter",
		"salt drying on the pier", "the dog asleep in the doorway",
		"smoke standing straight up", "a letter never sent",
		"the sea repeating itself", "one lamp in the whole valley",
		"apples softening in the bowl", "the clock's small insistence",
	}

	closings = []string{
		"and nothing asked to be forgiven", "and still the door stayed open",
		"which was almost enough", "as if we had always known",
		"though no one said so aloud", "and the morning went on without us",
		"the way water forgets the stone", "and I kept none of it",
	}
)

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	posts, err := createPosts(f, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("Created %d posts", len(posts))

	if err := createEngagement(f, users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Println("Created likes, saves, comments, and follows")

	// Counters are derived from the rows just written so seeded data starts
	// drift-free.
	if err := syncCounters(db); err != nil {
		return fmt.Errorf("failed to sync counters: %w", err)
	}

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, saves, follows, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

// poemBody builds a short enjambed poem from the phrase pools.
func poemBody(r *rand.Rand) string {
	lines := []string{
		openings[r.Intn(len(openings))],
		images[r.Intn(len(images))],
	}
	if r.Intn(2) == 0 {
		lines = append(lines, images[r.Intn(len(images))])
	}
	lines = append(lines, closings[r.Intn(len(closings))])
	return strings.Join(lines, "\n")
}

// proseBody builds one to three sentences of short prose.
func proseBody(r *rand.Rand) string {
	n := r.Intn(3) + 1
	var sb strings.Builder
	for i := 0; i < n; i++ {
		opening := openings[r.Intn(len(openings))]
		sb.WriteString(strings.ToUpper(opening[:1]) + opening[1:])
		sb.WriteString(", I noticed ")
		sb.WriteString(images[r.Intn(len(images))])
		sb.WriteString(", ")
		sb.WriteString(closings[r.Intn(len(closings))])
		sb.WriteString(". ")
	}
	return strings.TrimSpace(sb.String())
}

// quoteBody builds an aphorism-shaped line.
func quoteBody(r *rand.Rand) string {
	img := images[r.Intn(len(images))]
	return strings.ToUpper(img[:1]) + img[1:] + " — " + closings[r.Intn(len(closings))] + "."
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users could be created")
	}
	return users, nil
}

func createPosts(f *Factory, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.rand.Intn(len(users))]
		// Roughly one in eight posts is an authorless imported classic.
		if f.rand.Intn(8) == 0 {
			author = nil
		}
		post, err := f.CreatePost(author)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createEngagement(f *Factory, users []*models.User, posts []*models.Post) error {
	r := f.rand
	for _, post := range posts {
		for _, user := range users {
			if r.Intn(4) == 0 {
				if err := f.CreateLike(user, post); err != nil {
					return err
				}
			}
			if r.Intn(10) == 0 {
				if err := f.CreateSave(user, post); err != nil {
					return err
				}
			}
		}

		// A small comment thread on roughly half the posts.
		if r.Intn(2) == 0 {
			root, err := f.CreateComment(users[r.Intn(len(users))], post, nil)
			if err != nil {
				return err
			}
			for i := 0; i < r.Intn(3); i++ {
				if _, err := f.CreateComment(users[r.Intn(len(users))], post, &root.ID); err != nil {
					return err
				}
			}
		}
	}

	for _, follower := range users {
		for _, target := range users {
			if follower.ID != target.ID && r.Intn(6) == 0 {
				if err := f.CreateFollow(follower, target); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// syncCounters recomputes the denormalized post counters from their source
// tables, the same repair the reconciliation job performs in production.
func syncCounters(db *gorm.DB) error {
	if err := db.Exec(`UPDATE posts SET likes_count = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)`).Error; err != nil {
		return err
	}
	return db.Exec(`UPDATE posts SET comments_count = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)`).Error
}
