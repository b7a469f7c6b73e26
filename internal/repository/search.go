package repository

import (
	"strings"

	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"gorm.io/gorm"
)

// SearchFilter selects live posts by title substring and required tags.
// A blank Title and an empty Tags set each impose no constraint.
type SearchFilter struct {
	Title string
	Tags  []string
}

// HasTitle reports whether the filter constrains the title.
func (f SearchFilter) HasTitle() bool {
	return strings.TrimSpace(f.Title) != ""
}

// RequiredTags returns the de-duplicated set of tags a post must carry.
func (f SearchFilter) RequiredTags() []string {
	return models.NormalizeTags(f.Tags)
}

// applySearchFilter builds the predicate shared by Count and Search. Callers
// add only the final projection and the ordering/window on top of it.
//
// Tag matching is a superset test: a post qualifies when it carries every
// required tag, possibly more. The join keeps only the post's rows whose tag
// is required, and the HAVING clause demands that all of them were found.
func applySearchFilter(tx *gorm.DB, f SearchFilter) *gorm.DB {
	tx = tx.Unscoped().
		Model(&models.Post{}).
		Where("posts.deleted_at IS NULL")

	if f.HasTitle() {
		tx = tx.Where("LOWER(posts.title) LIKE LOWER(?)", "%"+f.Title+"%")
	}

	if tags := f.RequiredTags(); len(tags) > 0 {
		tx = tx.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Where("post_tags.tag IN ?", tags).
			Group("posts.id").
			Having("COUNT(DISTINCT post_tags.tag) = ?", len(tags))
	}

	return tx
}
