package server

import (
	"io"

	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/pagination"
	"github.com/dgaponov99/practicum-my-blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchPosts handles GET /api/posts?search=...&pageNumber=1&pageSize=10
//
//	@Summary	Search posts
//	@Tags		posts
//	@Param		search		query		string	false	"title words and #tags separated by spaces"
//	@Param		pageNumber	query		int		false	"page number, 1-based"	default(1)
//	@Param		pageSize	query		int		false	"page size"				default(10)
//	@Success	200			{object}	models.PostPageDTO
//	@Failure	400			{object}	models.ErrorResponse
//	@Router		/posts [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	title, tags := parseSearchQuery(c.Query("search"))

	page, err := s.postService.SearchPosts(c.UserContext(), service.SearchPostsInput{
		Title:      title,
		Tags:       tags,
		PageNumber: c.QueryInt("pageNumber", pagination.DefaultPageNumber),
		PageSize:   c.QueryInt("pageSize", pagination.DefaultPageSize),
		Client:     c.IP(),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:postId
//
//	@Summary	Get a post
//	@Tags		posts
//	@Param		postId	path		int	true	"post ID"
//	@Success	200		{object}	models.PostDTO
//	@Failure	404		{object}	models.ErrorResponse
//	@Router		/posts/{postId} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
//
//	@Summary	Create a post
//	@Tags		posts
//	@Param		post	body		service.CreatePostInput	true	"post"
//	@Success	200		{object}	models.PostDTO
//	@Failure	400		{object}	models.ErrorResponse
//	@Router		/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:postId
//
//	@Summary	Replace title, text and tags of a post
//	@Tags		posts
//	@Param		postId	path		int						true	"post ID"
//	@Param		post	body		service.UpdatePostInput	true	"post"
//	@Success	200		{object}	models.PostDTO
//	@Failure	400		{object}	models.ErrorResponse
//	@Failure	404		{object}	models.ErrorResponse
//	@Router		/posts/{postId} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req service.UpdatePostInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.PostID = id

	post, err := s.postService.EditPost(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:postId. Deleting a post that is
// missing or already deleted succeeds.
//
//	@Summary	Delete a post and its comments
//	@Tags		posts
//	@Param		postId	path	int	true	"post ID"
//	@Success	200
//	@Failure	500	{object}	models.ErrorResponse
//	@Router		/posts/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// LikePost handles POST /api/posts/:postId/likes and returns the new count.
//
//	@Summary	Like a post
//	@Tags		posts
//	@Param		postId	path		int	true	"post ID"
//	@Success	200		{integer}	int
//	@Failure	404		{object}	models.ErrorResponse
//	@Router		/posts/{postId}/likes [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	likes, err := s.postService.IncrementLikes(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(likes)
}

// UploadPostImage handles PUT /api/posts/:postId/image (multipart field "image").
//
//	@Summary	Upload the image of a post
//	@Tags		posts
//	@Accept		multipart/form-data
//	@Param		postId	path		int		true	"post ID"
//	@Param		image	formData	file	true	"jpeg, png, gif or webp"
//	@Success	200
//	@Failure	400	{object}	models.ErrorResponse
//	@Failure	404	{object}	models.ErrorResponse
//	@Router		/posts/{postId}/image [put]
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("no file uploaded"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Failed to read uploaded file"))
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Failed to read uploaded file"))
	}

	if err := s.postService.UploadImage(c.UserContext(), id, data); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetPostImage handles GET /api/posts/:postId/image. A post without an image
// answers 204.
//
//	@Summary	Get the image of a post
//	@Tags		posts
//	@Produce	octet-stream
//	@Param		postId	path	int	true	"post ID"
//	@Success	200		{file}	binary
//	@Success	204
//	@Failure	404	{object}	models.ErrorResponse
//	@Failure	500	{object}	models.ErrorResponse
//	@Router		/posts/{postId}/image [get]
func (s *Server) GetPostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	img, err := s.postService.GetImage(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if img == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.Send(img.Data)
}
