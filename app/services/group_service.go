package services

import (
	"errors"
	"fmt"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService manages communities.
type GroupService struct {
	groups repositories.GroupRepository
	posts  repositories.PostRepository
}

func NewGroupService(groups repositories.GroupRepository, posts repositories.PostRepository) *GroupService {
	return &GroupService{groups: groups, posts: posts}
}

// Create stores a new group. A blank slug is derived from the title.
func (s *GroupService) Create(group *models.Group) error {
	group.Title = strings.TrimSpace(group.Title)
	group.PrepopulateSlug()
	if err := group.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.groups.Create(group); err != nil {
		return duplicateSlug(err)
	}
	return nil
}

// Update saves changes to an existing group.
func (s *GroupService) Update(group *models.Group) error {
	group.Title = strings.TrimSpace(group.Title)
	group.PrepopulateSlug()
	if err := group.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.groups.Update(group); err != nil {
		return duplicateSlug(err)
	}
	return nil
}

func duplicateSlug(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return fieldError("slug", "Group with this slug already exists.")
	}
	return err
}

func (s *GroupService) GetByID(id int) (*models.Group, error) {
	return s.groups.GetByID(id)
}

func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groups.GetBySlug(slug)
}

func (s *GroupService) List() ([]*models.Group, error) {
	return s.groups.List()
}

// Delete removes a group. Its posts stay and lose their group.
func (s *GroupService) Delete(id int) error {
	if _, err := s.groups.GetByID(id); err != nil {
		return err
	}
	posts, err := s.posts.Find(repositories.PostQuery{GroupID: id})
	if err != nil {
		return fmt.Errorf("list group posts: %w", err)
	}
	for _, p := range posts {
		p.GroupID = 0
		if err := s.posts.Update(p); err != nil {
			return fmt.Errorf("detach post %d: %w", p.ID, err)
		}
	}
	return s.groups.Delete(id)
}
