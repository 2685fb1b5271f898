package services

import (
	"fmt"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

// AddComment attaches a comment by author to post postID.
func (s *CommentService) AddComment(author *models.User, postID int, text string) (*models.Comment, error) {
	if author == nil || author.ID == 0 {
		return nil, ErrForbidden
	}
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{AuthorID: author.ID, Text: strings.TrimSpace(text)}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = author
	return comment, nil
}

// ListPostComments returns a post's comments, oldest first, with authors.
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(postID)
	if err != nil {
		return nil, err
	}
	r := newResolver(s.users, nil)
	for _, c := range comments {
		if err := r.comment(c); err != nil {
			return nil, err
		}
	}
	return comments, nil
}

// CountByPost is the number of comments on post postID.
func (s *CommentService) CountByPost(postID int) (int, error) {
	return s.comments.CountByPost(postID)
}

// DeleteComment removes comment id from post postID. Its author and
// staff may do so. A comment filed under another post is not found.
func (s *CommentService) DeleteComment(editor *models.User, postID, id int) error {
	comment, err := s.comments.GetByID(id)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return repositories.ErrNotFound
	}
	if editor == nil || (editor.ID != comment.AuthorID && !editor.IsStaff) {
		return ErrForbidden
	}
	return s.comments.Delete(id)
}
