package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"yatube/app/media"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
)

// FormError reports invalid add or change form input, one message per
// field.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	return (&services.ValidationError{Fields: e.Fields}).Error()
}

func formError(field, msg string) error {
	return &FormError{Fields: map[string]string{field: msg}}
}

func validationError(err error) error {
	return &FormError{Fields: models.FieldErrors(err)}
}

// FormErrors returns the per-field messages of err, or nil.
func FormErrors(err error) map[string]string {
	var ferr *FormError
	if errors.As(err, &ferr) {
		return ferr.Fields
	}
	return services.FieldErrors(err)
}

// refID parses a reference form value. Blank means no reference.
func refID(values map[string]string, field string, required bool) (int, error) {
	raw := strings.TrimSpace(values[field])
	if raw == "" {
		if required {
			return 0, formError(field, "This field is required.")
		}
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, formError(field, "Select a valid choice. That choice is not one of the available choices.")
	}
	return id, nil
}

func userRef(u *models.User) *Ref {
	if u == nil {
		return nil
	}
	return &Ref{ID: u.ID, Label: u.Username}
}

func groupRef(g *models.Group) *Ref {
	if g == nil {
		return nil
	}
	return &Ref{ID: g.ID, Label: g.Title}
}

func postRef(p *models.Post) *Ref {
	if p == nil {
		return nil
	}
	return &Ref{ID: p.ID, Label: p.String()}
}

func userChoices(users repositories.UserRepository) ([]Choice, error) {
	list, err := users.List()
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(list))
	for _, u := range list {
		choices = append(choices, Choice{Value: strconv.Itoa(u.ID), Label: u.Username})
	}
	return choices, nil
}

// PostSource serves posts to the admin site.
type PostSource struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Users    repositories.UserRepository
	Groups   repositories.GroupRepository
	Media    *media.Storage
}

func (s *PostSource) row(p *models.Post, users map[int]*models.User, groups map[int]*models.Group) Row {
	values := map[string]any{
		"text":     p.Text,
		"pub_date": p.PubDate,
		"author":   userRef(users[p.AuthorID]),
		"group":    nil,
		"image":    p.Image,
	}
	if g, ok := groups[p.GroupID]; ok {
		values["group"] = groupRef(g)
	}
	return Row{PK: p.ID, Values: values}
}

func (s *PostSource) lookups() (map[int]*models.User, map[int]*models.Group, error) {
	users, err := s.Users.List()
	if err != nil {
		return nil, nil, err
	}
	groups, err := s.Groups.List()
	if err != nil {
		return nil, nil, err
	}
	byUser := make(map[int]*models.User, len(users))
	for _, u := range users {
		byUser[u.ID] = u
	}
	byGroup := make(map[int]*models.Group, len(groups))
	for _, g := range groups {
		byGroup[g.ID] = g
	}
	return byUser, byGroup, nil
}

func (s *PostSource) Rows() ([]Row, error) {
	posts, err := s.Posts.Find(repositories.PostQuery{})
	if err != nil {
		return nil, err
	}
	users, groups, err := s.lookups()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, s.row(p, users, groups))
	}
	return rows, nil
}

func (s *PostSource) Get(pk int) (Row, error) {
	p, err := s.Posts.GetByID(pk)
	if err != nil {
		return Row{}, err
	}
	users, groups, err := s.lookups()
	if err != nil {
		return Row{}, err
	}
	return s.row(p, users, groups), nil
}

// apply copies the submitted fields that are present onto p.
func (s *PostSource) apply(p *models.Post, values map[string]string) error {
	if text, ok := values["text"]; ok {
		p.Text = strings.TrimSpace(text)
	}
	if _, ok := values["author"]; ok {
		id, err := refID(values, "author", true)
		if err != nil {
			return err
		}
		if _, err := s.Users.GetByID(id); err != nil {
			return formError("author", "Select a valid choice. That choice is not one of the available choices.")
		}
		p.AuthorID = id
	}
	if _, ok := values["group"]; ok {
		id, err := refID(values, "group", false)
		if err != nil {
			return err
		}
		if id != 0 {
			if _, err := s.Groups.GetByID(id); err != nil {
				return formError("group", "Select a valid choice. That choice is not one of the available choices.")
			}
		}
		p.GroupID = id
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *PostSource) Create(values map[string]string) (int, error) {
	if _, ok := values["author"]; !ok {
		return 0, formError("author", "This field is required.")
	}
	p := &models.Post{}
	p.BeforeCreate()
	if err := s.apply(p, values); err != nil {
		return 0, err
	}
	if err := s.Posts.Create(p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (s *PostSource) Update(pk int, values map[string]string) error {
	p, err := s.Posts.GetByID(pk)
	if err != nil {
		return err
	}
	updated := *p
	if err := s.apply(&updated, values); err != nil {
		return err
	}
	return s.Posts.Update(&updated)
}

// Delete removes the post, its comments and its image.
func (s *PostSource) Delete(pk int) error {
	p, err := s.Posts.GetByID(pk)
	if err != nil {
		return err
	}
	comments, err := s.Comments.ListByPost(pk)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := s.Comments.Delete(c.ID); err != nil {
			return fmt.Errorf("delete comment %d: %w", c.ID, err)
		}
	}
	if err := s.Posts.Delete(pk); err != nil {
		return err
	}
	if p.Image != "" && s.Media != nil {
		return s.Media.Delete(p.Image)
	}
	return nil
}

func (s *PostSource) Choices(field string) ([]Choice, error) {
	switch field {
	case "author":
		return userChoices(s.Users)
	case "group":
		groups, err := s.Groups.List()
		if err != nil {
			return nil, err
		}
		choices := make([]Choice, 0, len(groups))
		for _, g := range groups {
			choices = append(choices, Choice{Value: strconv.Itoa(g.ID), Label: g.Title})
		}
		return choices, nil
	}
	return nil, nil
}

// GroupSource serves groups to the admin site.
type GroupSource struct {
	Groups *services.GroupService
}

func groupRow(g *models.Group) Row {
	return Row{PK: g.ID, Values: map[string]any{
		"title":       g.Title,
		"slug":        g.Slug,
		"description": g.Description,
	}}
}

func (s *GroupSource) Rows() ([]Row, error) {
	groups, err := s.Groups.List()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, groupRow(g))
	}
	return rows, nil
}

func (s *GroupSource) Get(pk int) (Row, error) {
	g, err := s.Groups.GetByID(pk)
	if err != nil {
		return Row{}, err
	}
	return groupRow(g), nil
}

func (s *GroupSource) Create(values map[string]string) (int, error) {
	g := &models.Group{
		Title:       values["title"],
		Slug:        strings.TrimSpace(values["slug"]),
		Description: values["description"],
	}
	if err := s.Groups.Create(g); err != nil {
		return 0, err
	}
	return g.ID, nil
}

func (s *GroupSource) Update(pk int, values map[string]string) error {
	g, err := s.Groups.GetByID(pk)
	if err != nil {
		return err
	}
	updated := *g
	if v, ok := values["title"]; ok {
		updated.Title = v
	}
	if v, ok := values["slug"]; ok {
		updated.Slug = strings.TrimSpace(v)
	}
	if v, ok := values["description"]; ok {
		updated.Description = v
	}
	return s.Groups.Update(&updated)
}

func (s *GroupSource) Delete(pk int) error {
	return s.Groups.Delete(pk)
}

func (s *GroupSource) Choices(string) ([]Choice, error) {
	return nil, nil
}

// CommentSource serves comments to the admin site.
type CommentSource struct {
	Comments repositories.CommentRepository
	Posts    repositories.PostRepository
	Users    repositories.UserRepository
}

func (s *CommentSource) row(c *models.Comment) (Row, error) {
	values := map[string]any{
		"text":    c.Text,
		"created": c.Created,
		"post":    nil,
		"author":  nil,
	}
	if p, err := s.Posts.GetByID(c.PostID); err == nil {
		values["post"] = postRef(p)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return Row{}, err
	}
	if u, err := s.Users.GetByID(c.AuthorID); err == nil {
		values["author"] = userRef(u)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return Row{}, err
	}
	return Row{PK: c.ID, Values: values}, nil
}

func (s *CommentSource) Rows() ([]Row, error) {
	comments, err := s.Comments.List()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(comments))
	for _, c := range comments {
		row, err := s.row(c)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CommentSource) Get(pk int) (Row, error) {
	c, err := s.Comments.GetByID(pk)
	if err != nil {
		return Row{}, err
	}
	return s.row(c)
}

func (s *CommentSource) apply(c *models.Comment, values map[string]string) error {
	if text, ok := values["text"]; ok {
		c.Text = strings.TrimSpace(text)
	}
	if _, ok := values["author"]; ok {
		id, err := refID(values, "author", true)
		if err != nil {
			return err
		}
		if _, err := s.Users.GetByID(id); err != nil {
			return formError("author", "Select a valid choice. That choice is not one of the available choices.")
		}
		c.AuthorID = id
	}
	if err := c.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *CommentSource) Create(values map[string]string) (int, error) {
	postID, err := refID(values, "post", true)
	if err != nil {
		return 0, err
	}
	post, err := s.Posts.GetByID(postID)
	if err != nil {
		return 0, formError("post", "Select a valid choice. That choice is not one of the available choices.")
	}
	if _, ok := values["author"]; !ok {
		return 0, formError("author", "This field is required.")
	}
	c := &models.Comment{}
	if err := c.SetPost(post); err != nil {
		return 0, err
	}
	c.BeforeCreate()
	if err := s.apply(c, values); err != nil {
		return 0, err
	}
	if err := s.Comments.Create(c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// Update changes text and author. A comment never moves to another post.
func (s *CommentSource) Update(pk int, values map[string]string) error {
	c, err := s.Comments.GetByID(pk)
	if err != nil {
		return err
	}
	if raw, ok := values["post"]; ok && strings.TrimSpace(raw) != strconv.Itoa(c.PostID) {
		return formError("post", "A comment cannot be moved to another post.")
	}
	updated := *c
	if err := s.apply(&updated, values); err != nil {
		return err
	}
	return s.Comments.Update(&updated)
}

func (s *CommentSource) Delete(pk int) error {
	return s.Comments.Delete(pk)
}

func (s *CommentSource) Choices(field string) ([]Choice, error) {
	switch field {
	case "author":
		return userChoices(s.Users)
	case "post":
		posts, err := s.Posts.Find(repositories.PostQuery{})
		if err != nil {
			return nil, err
		}
		choices := make([]Choice, 0, len(posts))
		for _, p := range posts {
			choices = append(choices, Choice{Value: strconv.Itoa(p.ID), Label: p.String()})
		}
		return choices, nil
	}
	return nil, nil
}

// NewDefaultSite registers posts, groups and comments over store.
func NewDefaultSite(store *repositories.Store, groups *services.GroupService, storage *media.Storage) (*Site, error) {
	site := NewSite()
	regs := []struct {
		model  *ModelAdmin
		source Source
	}{
		{PostAdmin(), &PostSource{Posts: store.Posts, Comments: store.Comments, Users: store.Users, Groups: store.Groups, Media: storage}},
		{GroupAdmin(), &GroupSource{Groups: groups}},
		{CommentAdmin(), &CommentSource{Comments: store.Comments, Posts: store.Posts, Users: store.Users}},
	}
	for _, r := range regs {
		if err := site.Register(r.model, r.source); err != nil {
			return nil, err
		}
	}
	return site, nil
}
