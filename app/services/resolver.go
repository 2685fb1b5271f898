package services

import (
	"errors"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"
)

// resolver fills in the relations of posts and comments, loading each
// user and group once.
type resolver struct {
	users     repositories.UserRepository
	groups    repositories.GroupRepository
	userByID  map[int]*models.User
	groupByID map[int]*models.Group
}

func newResolver(users repositories.UserRepository, groups repositories.GroupRepository) *resolver {
	return &resolver{
		users:     users,
		groups:    groups,
		userByID:  make(map[int]*models.User),
		groupByID: make(map[int]*models.Group),
	}
}

func (r *resolver) user(id int) (*models.User, error) {
	if u, ok := r.userByID[id]; ok {
		return u, nil
	}
	u, err := r.users.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	r.userByID[id] = u
	return u, nil
}

func (r *resolver) group(id int) (*models.Group, error) {
	if g, ok := r.groupByID[id]; ok {
		return g, nil
	}
	g, err := r.groups.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		// The group was removed behind our back; show the post ungrouped.
		r.groupByID[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load group %d: %w", id, err)
	}
	r.groupByID[id] = g
	return g, nil
}

func (r *resolver) post(p *models.Post) error {
	author, err := r.user(p.AuthorID)
	if err != nil {
		return err
	}
	p.Author = author
	p.Group = nil
	if p.GroupID != 0 {
		g, err := r.group(p.GroupID)
		if err != nil {
			return err
		}
		p.Group = g
	}
	return nil
}

func (r *resolver) comment(c *models.Comment) error {
	author, err := r.user(c.AuthorID)
	if err != nil {
		return err
	}
	c.Author = author
	return nil
}
