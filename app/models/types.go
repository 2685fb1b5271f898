package models

import "time"

// User is a registered account. Staff users may use the admin site.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,max=150,username"`
	Email        string    `json:"email" validate:"omitempty,email,max=254"`
	PasswordHash string    `json:"password_hash"`
	IsStaff      bool      `json:"is_staff"`
	DateJoined   time.Time `json:"date_joined" validate:"required"`
}

// Group is a community that posts may belong to.
type Group struct {
	ID          int    `json:"id" validate:"gte=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}

// Post is a user-authored entry, optionally grouped and illustrated.
type Post struct {
	ID       int       `json:"id" validate:"gte=0"`
	Text     string    `json:"text" validate:"required"`
	PubDate  time.Time `json:"pub_date" validate:"required"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	GroupID  int       `json:"group_id,omitempty" validate:"gte=0"`
	Image    string    `json:"image,omitempty" validate:"omitempty,max=255"`

	Author   *User      `json:"-" validate:"-"`
	Group    *Group     `json:"-" validate:"-"`
	Comments []*Comment `json:"-" validate:"-"`
}

// Comment is a reply attached to a single post.
type Comment struct {
	ID       int       `json:"id" validate:"gte=0"`
	PostID   int       `json:"post_id" validate:"required,gt=0"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	Text     string    `json:"text" validate:"required"`
	Created  time.Time `json:"created" validate:"required"`

	Post   *Post `json:"-" validate:"-"`
	Author *User `json:"-" validate:"-"`
}
