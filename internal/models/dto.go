package models

// PostDTO is the API representation of a post enriched with its live comment count.
type PostDTO struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Text          string   `json:"text"`
	Tags          []string `json:"tags"`
	LikesCount    int      `json:"likesCount"`
	CommentsCount int      `json:"commentsCount"`
}

// PostPageDTO is one page of search results.
type PostPageDTO struct {
	Posts    []PostDTO `json:"posts"`
	HasPrev  bool      `json:"hasPrev"`
	HasNext  bool      `json:"hasNext"`
	LastPage int       `json:"lastPage"`
}

// CommentDTO is the API representation of a comment.
type CommentDTO struct {
	ID     uint   `json:"id"`
	PostID uint   `json:"postId"`
	Text   string `json:"text"`
}

// NewPostDTO maps a post and its comment count to a PostDTO.
func NewPostDTO(post *Post, commentsCount int) PostDTO {
	return PostDTO{
		ID:            post.ID,
		Title:         post.Title,
		Text:          post.Text,
		Tags:          post.TagNames(),
		LikesCount:    post.LikesCount,
		CommentsCount: commentsCount,
	}
}

// NewCommentDTO maps a comment to a CommentDTO.
func NewCommentDTO(comment *Comment) CommentDTO {
	return CommentDTO{
		ID:     comment.ID,
		PostID: comment.PostID,
		Text:   comment.Text,
	}
}
