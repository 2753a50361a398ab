package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"verseflow/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seeding
	return &Factory{db: db, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	handle := strings.ToLower(gofakeit.Username())
	if len(handle) > 16 {
		handle = handle[:16]
	}
	// Suffix guarantees uniqueness and keeps the handle in the allowed charset.
	handle = fmt.Sprintf("%s_%d", strings.Map(handleChar, handle), gofakeit.Number(100, 999))

	user := &models.User{
		AuthID:      uuid.NewString(),
		Handle:      handle,
		DisplayName: gofakeit.Name(),
		Bio:         gofakeit.Quote(),
		Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", uuid.NewString()),
	}
	if len(user.Bio) > 150 {
		user.Bio = user.Bio[:150]
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func handleChar(r rune) rune {
	if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
		return r
	}
	return '_'
}

// CreatePost constructs and persists a sample post. A nil user produces an
// authorless imported quote with an attribution.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{}

	if user == nil {
		post.Kind = models.PostKindQuote
		post.Content = quoteBody(f.rand)
		post.Attribution = quoteAuthors[f.rand.Intn(len(quoteAuthors))]
	} else {
		userID := user.ID
		post.UserID = &userID
		switch f.rand.Intn(3) {
		case 0:
			post.Kind = models.PostKindPoetry
			post.Content = poemBody(f.rand)
		case 1:
			post.Kind = models.PostKindProse
			post.Content = proseBody(f.rand)
		default:
			post.Kind = models.PostKindQuote
			post.Content = quoteBody(f.rand)
			post.Attribution = quoteAuthors[f.rand.Intn(len(quoteAuthors))]
		}
	}

	// Spread creation times over the last 90 days for a believable feed.
	daysBack := f.rand.Intn(90)
	hoursBack := f.rand.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a comment on the provided post.
// parentID of nil makes a root comment.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parentID *uint, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		ParentID: parentID,
		Content:  gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	return f.db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error
}

// CreateSave persists a save from user on post.
func (f *Factory) CreateSave(user *models.User, post *models.Post) error {
	return f.db.Create(&models.Save{UserID: user.ID, PostID: post.ID}).Error
}

// CreateFollow persists a follow edge from follower to target.
func (f *Factory) CreateFollow(follower, target *models.User) error {
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: target.ID}).Error
}
