package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/youngcruel/blog-multiutente/modules/post"
)

// splitTags turns "a, b,,c" into [a b c].
func splitTags(raw string) []string {
	tags := make([]string, 0)
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// listPosts handles GET /posts.
func (m *APIModule) listPosts(c *fiber.Ctx) error {
	page, err := m.postPort.ListPosts(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", post.DefaultPageSize))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// getPost handles GET /posts/:id.
func (m *APIModule) getPost(c *fiber.Ctx) error {
	view, err := m.postPort.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// createPost handles POST /posts with a JSON body or a multipart form
// carrying an optional image file.
func (m *APIModule) createPost(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	image, err := m.saveUpload(c, "image")
	if err != nil {
		return writeError(c, err)
	}

	view, err := m.postPort.CreatePost(c.UserContext(), post.CreatePostRequest{
		AuthorID: claims.UserID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     splitTags(req.Tags),
		Image:    image,
	})
	if err != nil {
		m.discardUpload(c, image)
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// updatePost handles PATCH /posts/:id.
func (m *APIModule) updatePost(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx := c.UserContext()
	postID := c.Params("id")

	// Ownership is checked before anything is uploaded.
	current, err := m.postPort.GetPost(ctx, postID)
	if err != nil {
		return writeError(c, err)
	}
	if current.Author.ID != claims.UserID {
		return writeError(c, post.ErrForbidden)
	}

	image, err := m.saveUpload(c, "image")
	if err != nil {
		return writeError(c, err)
	}

	update := post.UpdatePostRequest{
		UserID:  claims.UserID,
		PostID:  postID,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Tags != nil {
		update.Tags = splitTags(*req.Tags)
	}
	if image != "" {
		update.Image = &image
	}

	view, err := m.postPort.UpdatePost(ctx, update)
	if err != nil {
		m.discardUpload(c, image)
		return writeError(c, err)
	}
	if image != "" {
		m.discardUpload(c, current.Image)
	}
	return c.JSON(view)
}

// deletePost handles DELETE /posts/:id.
func (m *APIModule) deletePost(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	resp, err := m.postPort.DeletePost(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	m.discardUpload(c, resp.Image)
	return c.JSON(MessageResponse{Message: "Post deleted"})
}

// addComment handles POST /posts/:id/comments.
func (m *APIModule) addComment(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := m.postPort.AddComment(c.UserContext(), claims.UserID, c.Params("id"), req.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// updateComment handles PATCH /posts/:id/comments/:commentId.
func (m *APIModule) updateComment(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := m.postPort.UpdateComment(c.UserContext(), claims.UserID, c.Params("id"), c.Params("commentId"), req.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(comment)
}

// deleteComment handles DELETE /posts/:id/comments/:commentId.
func (m *APIModule) deleteComment(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := m.postPort.DeleteComment(c.UserContext(), claims.UserID, c.Params("id"), c.Params("commentId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Comment deleted"})
}

// likePost handles POST /posts/:id/like.
func (m *APIModule) likePost(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	result, err := m.postPort.LikePost(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// unlikePost handles DELETE /posts/:id/like/remove.
func (m *APIModule) unlikePost(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	result, err := m.postPort.UnlikePost(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}
