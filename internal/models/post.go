// Package models contains data structures for the blog's domain models.
package models

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Post represents a blog post. Posts are soft-deleted: DeletedAt is set and the row is kept.
type Post struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	LikesCount int            `gorm:"not null;default:0" json:"likes_count"`
	ImageToken *string        `gorm:"size:64" json:"image_token,omitempty"`
	Tags       []PostTag      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"tags"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostTag is one row of the post/tag association. The composite key keeps a
// post's tag set free of duplicates.
type PostTag struct {
	PostID uint   `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Tag    string `gorm:"primaryKey;size:255" json:"tag"`
}

// TableName returns the database table name for PostTag.
func (PostTag) TableName() string {
	return "post_tags"
}

// IsDeleted reports whether the post has been soft-deleted.
func (p *Post) IsDeleted() bool {
	return p.DeletedAt.Valid
}

// TagNames returns the post's tags sorted alphabetically.
func (p *Post) TagNames() []string {
	names := lo.Map(p.Tags, func(t PostTag, _ int) string { return t.Tag })
	sort.Strings(names)
	return names
}

// NormalizeTags trims tags, drops empty entries and removes duplicates.
// Tags stay case-sensitive.
func NormalizeTags(tags []string) []string {
	trimmed := lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	})
	return lo.Uniq(trimmed)
}

// NewPostTags builds association rows for the given tag names.
func NewPostTags(postID uint, tags []string) []PostTag {
	return lo.Map(NormalizeTags(tags), func(t string, _ int) PostTag {
		return PostTag{PostID: postID, Tag: t}
	})
}
