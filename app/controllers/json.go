package controllers

import (
	"time"

	"yatube/app/models"
	"yatube/app/services"
)

type userJSON struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type groupJSON struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type commentJSON struct {
	ID      int       `json:"id"`
	PostID  int       `json:"post"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

type postJSON struct {
	ID       int           `json:"id"`
	Text     string        `json:"text"`
	PubDate  time.Time     `json:"pub_date"`
	Author   string        `json:"author"`
	Group    *groupJSON    `json:"group,omitempty"`
	Image    string        `json:"image,omitempty"`
	Comments []commentJSON `json:"comments,omitempty"`
}

type pageJSON struct {
	Page     int        `json:"page"`
	NumPages int        `json:"num_pages"`
	Count    int        `json:"count"`
	Posts    []postJSON `json:"posts"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username}
}

func toGroupJSON(g *models.Group) *groupJSON {
	if g == nil {
		return nil
	}
	return &groupJSON{ID: g.ID, Title: g.Title, Slug: g.Slug, Description: g.Description}
}

func toCommentJSON(c *models.Comment) commentJSON {
	out := commentJSON{ID: c.ID, PostID: c.PostID, Text: c.Text, Created: c.Created}
	if c.Author != nil {
		out.Author = c.Author.Username
	}
	return out
}

func toPostJSON(p *models.Post, imageURL func(*models.Post) string) postJSON {
	out := postJSON{
		ID:      p.ID,
		Text:    p.Text,
		PubDate: p.PubDate,
		Group:   toGroupJSON(p.Group),
		Image:   imageURL(p),
	}
	if p.Author != nil {
		out.Author = p.Author.Username
	}
	for _, c := range p.Comments {
		out.Comments = append(out.Comments, toCommentJSON(c))
	}
	return out
}

func toPageJSON(page *services.Page, imageURL func(*models.Post) string) pageJSON {
	out := pageJSON{Page: page.Number, NumPages: page.NumPages, Count: page.Total, Posts: []postJSON{}}
	for _, p := range page.Posts {
		out.Posts = append(out.Posts, toPostJSON(p, imageURL))
	}
	return out
}
