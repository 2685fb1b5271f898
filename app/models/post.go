package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.PubDate.IsZero() {
		return errors.New("pub_date cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
}

// IsAuthoredBy reports whether user wrote the post.
func (p *Post) IsAuthoredBy(user *User) bool {
	return user != nil && user.ID != 0 && p.AuthorID == user.ID
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	comment.Post = p
	p.Comments = append(p.Comments, comment)
	return nil
}

// RemoveComment removes a comment from the post
func (p *Post) RemoveComment(commentID int) error {
	for i, comment := range p.Comments {
		if comment.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return errors.New("comment not found")
}

// String returns the first 15 characters of the text.
func (p *Post) String() string {
	return truncate(p.Text, 15)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
