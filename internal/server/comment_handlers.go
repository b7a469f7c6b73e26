package server

import (
	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// commentOfPost loads a comment and checks it belongs to postID. A comment of
// another post is reported as not found.
func (s *Server) commentOfPost(c *fiber.Ctx, postID, commentID uint) (*models.CommentDTO, error) {
	comment, err := s.commentService.GetComment(c.UserContext(), commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// GetComments handles GET /api/posts/:postId/comments
//
//	@Summary	List the comments of a post
//	@Tags		comments
//	@Param		postId	path	int	true	"post ID"
//	@Success	200		{array}	models.CommentDTO
//	@Failure	404		{object}	models.ErrorResponse
//	@Router		/posts/{postId}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/posts/:postId/comments/:commentId
//
//	@Summary	Get a comment of a post
//	@Tags		comments
//	@Param		postId		path		int	true	"post ID"
//	@Param		commentId	path		int	true	"comment ID"
//	@Success	200			{object}	models.CommentDTO
//	@Failure	404			{object}	models.ErrorResponse
//	@Router		/posts/{postId}/comments/{commentId} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentOfPost(c, postID, commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/posts/:postId/comments
//
//	@Summary	Comment on a post
//	@Tags		comments
//	@Param		postId	path		int							true	"post ID"
//	@Param		comment	body		service.CreateCommentInput	true	"comment"
//	@Success	200		{object}	models.CommentDTO
//	@Failure	400		{object}	models.ErrorResponse
//	@Failure	404		{object}	models.ErrorResponse
//	@Router		/posts/{postId}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req service.CreateCommentInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.PostID = postID

	comment, err := s.commentService.CreateComment(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PUT /api/posts/:postId/comments/:commentId
//
//	@Summary	Replace the text of a comment
//	@Tags		comments
//	@Param		postId		path		int							true	"post ID"
//	@Param		commentId	path		int							true	"comment ID"
//	@Param		comment		body		service.UpdateCommentInput	true	"comment"
//	@Success	200			{object}	models.CommentDTO
//	@Failure	400			{object}	models.ErrorResponse
//	@Failure	404			{object}	models.ErrorResponse
//	@Router		/posts/{postId}/comments/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req service.UpdateCommentInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.CommentID = commentID

	if _, err := s.commentOfPost(c, postID, commentID); err != nil {
		return respondServiceError(c, err)
	}

	comment, err := s.commentService.EditComment(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:postId/comments/:commentId.
// Deleting a comment that is already gone succeeds.
//
//	@Summary	Delete a comment
//	@Tags		comments
//	@Param		postId		path	int	true	"post ID"
//	@Param		commentId	path	int	true	"comment ID"
//	@Success	200
//	@Failure	404	{object}	models.ErrorResponse
//	@Router		/posts/{postId}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.UserContext(), commentID)
	switch {
	case models.IsNotFound(err):
		return c.SendStatus(fiber.StatusOK)
	case err != nil:
		return respondServiceError(c, err)
	case comment.PostID != postID:
		return respondServiceError(c, models.NewNotFoundError("Comment", commentID))
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
