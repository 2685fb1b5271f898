package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"yatube/app/media"
	"yatube/app/models"
	"yatube/app/repositories"

	"go.uber.org/zap"
)

// PostForm is the data submitted on the create and edit pages. Image is
// nil when no file was uploaded.
type PostForm struct {
	Text    string
	GroupID int
	Image   io.Reader
}

// PostService handles business logic for posts.
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	groups   repositories.GroupRepository
	media    *media.Storage
	logger   *zap.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
	groups repositories.GroupRepository,
	storage *media.Storage,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		users:    users,
		groups:   groups,
		media:    storage,
		logger:   logger,
	}
}

// CreatePost publishes a new post by author.
func (s *PostService) CreatePost(author *models.User, form PostForm) (*models.Post, error) {
	if author == nil || author.ID == 0 {
		return nil, ErrForbidden
	}
	post := &models.Post{AuthorID: author.ID}
	post.BeforeCreate()
	if err := s.apply(post, form); err != nil {
		return nil, err
	}

	if err := s.posts.Create(post); err != nil {
		s.discardImage(post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = author
	return post, nil
}

// UpdatePost saves editor's changes to post id. Only the author may edit.
// A newly uploaded image replaces the old one.
func (s *PostService) UpdatePost(editor *models.User, id int, form PostForm) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(editor) {
		return nil, ErrForbidden
	}

	updated := *post
	updated.Comments = nil
	if err := s.apply(&updated, form); err != nil {
		return nil, err
	}
	if err := s.posts.Update(&updated); err != nil {
		if updated.Image != post.Image {
			s.discardImage(updated.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	if updated.Image != post.Image {
		s.discardImage(post.Image)
	}
	updated.Author = editor
	return &updated, nil
}

// apply validates form into post, storing the uploaded image last so that
// an invalid form leaves no file behind.
func (s *PostService) apply(post *models.Post, form PostForm) error {
	post.Text = strings.TrimSpace(form.Text)
	post.GroupID = form.GroupID
	post.Group = nil

	if err := post.Validate(); err != nil {
		return invalid(err)
	}
	if form.GroupID != 0 {
		group, err := s.groups.GetByID(form.GroupID)
		if errors.Is(err, repositories.ErrNotFound) {
			return fieldError("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		if err != nil {
			return err
		}
		post.Group = group
	}

	if form.Image != nil {
		rel, err := s.media.SaveImage(media.PostsDir, form.Image)
		switch {
		case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrTooLarge):
			return fieldError("image", err.Error())
		case err != nil:
			return fmt.Errorf("save image: %w", err)
		}
		post.Image = rel
	}
	return nil
}

func (s *PostService) discardImage(rel string) {
	if rel == "" {
		return
	}
	if err := s.media.Delete(rel); err != nil {
		s.logger.Warn("delete post image", zap.String("image", rel), zap.Error(err))
	}
}

// GetPost returns a post with its author, group and comments resolved.
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	r := newResolver(s.users, s.groups)
	if err := r.post(post); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	post.Comments = comments
	for _, c := range comments {
		c.Post = post
		if err := r.comment(c); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// Index is the page of all posts, newest first.
func (s *PostService) Index(number int) (*Page, error) {
	return s.page(repositories.PostQuery{}, number)
}

// GroupPosts pages the posts of the group with slug.
func (s *PostService) GroupPosts(slug string, number int) (*models.Group, *Page, error) {
	group, err := s.groups.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(repositories.PostQuery{GroupID: group.ID}, number)
	return group, page, err
}

// ProfilePosts pages the posts written by username.
func (s *PostService) ProfilePosts(username string, number int) (*models.User, *Page, error) {
	author, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(repositories.PostQuery{AuthorID: author.ID}, number)
	return author, page, err
}

func (s *PostService) page(q repositories.PostQuery, number int) (*Page, error) {
	total, err := s.posts.Count(q)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	n, numPages, offset := pageBounds(number, total)
	q.Limit, q.Offset = PostsPerPage, offset

	posts, err := s.posts.Find(q)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	r := newResolver(s.users, s.groups)
	for _, p := range posts {
		if err := r.post(p); err != nil {
			return nil, err
		}
	}
	return &Page{Posts: posts, Number: n, NumPages: numPages, Total: total}, nil
}

// DeletePost removes a post together with its comments and image.
func (s *PostService) DeletePost(editor *models.User, id int) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return err
	}
	if !post.IsAuthoredBy(editor) && (editor == nil || !editor.IsStaff) {
		return ErrForbidden
	}

	comments, err := s.comments.ListByPost(id)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	for _, c := range comments {
		if err := s.comments.Delete(c.ID); err != nil {
			return fmt.Errorf("delete comment %d: %w", c.ID, err)
		}
	}
	if err := s.posts.Delete(id); err != nil {
		return err
	}
	s.discardImage(post.Image)
	return nil
}

// Count is the total number of posts.
func (s *PostService) Count() (int, error) {
	return s.posts.Count(repositories.PostQuery{})
}

// ImageURL is the public address of a post's image, or "".
func (s *PostService) ImageURL(post *models.Post) string {
	return s.media.URL(post.Image)
}
