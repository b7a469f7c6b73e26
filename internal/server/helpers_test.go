package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"postId", "post ID"},
		{"commentId", "comment ID"},
		{"parentCommentId", "parent comment ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("bad"), fiber.StatusBadRequest},
		{"not found", models.NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"internal", models.NewInternalError(errors.New("db down")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapServiceError(tt.err))
		})
	}
}

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantTags  []string
	}{
		{"empty", "", "", nil},
		{"title only", "hello world", "hello world", nil},
		{"tags only", "#go #db", "", []string{"go", "db"}},
		{"mixed", "hello #go world #db", "hello world", []string{"go", "db"}},
		{"bare hash ignored", "hello # world", "hello world", nil},
		{"surrounding spaces trimmed", "  hello #go ", "hello", []string{"go"}},
		{"duplicate tags kept", "#go #go", "", []string{"go", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, tags := parseSearchQuery(tt.text)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/posts/:postId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "postId")
		if err != nil {
			return nil
		}
		return c.JSON(id)
	})

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/posts/42", fiber.StatusOK, "42"},
		{"/posts/0", fiber.StatusBadRequest, "Invalid post ID"},
		{"/posts/-3", fiber.StatusBadRequest, "Invalid post ID"},
		{"/posts/abc", fiber.StatusBadRequest, "Invalid post ID"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.contains)
		})
	}
}
