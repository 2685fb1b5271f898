package mock

import (
	"sort"
	"strings"
	"sync"

	"yatube/app/models"
	"yatube/app/repositories"
)

type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

type GroupRepository struct {
	groups map[int]*models.Group
	nextID int
	mutex  sync.RWMutex
}

type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int]*models.User), nextID: 1}
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{groups: make(map[int]*models.Group), nextID: 1}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[int]*models.Post), nextID: 1}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[int]*models.Comment), nextID: 1}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) List() ([]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var users []*models.User
	for id := 1; id < m.nextID; id++ {
		if u, exists := m.users[id]; exists {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *UserRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.users), nil
}

// GroupRepository implementation
func (m *GroupRepository) Create(group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, g := range m.groups {
		if g.Slug == group.Slug {
			return repositories.ErrDuplicate
		}
	}
	group.ID = m.nextID
	m.nextID++
	m.groups[group.ID] = group
	return nil
}

func (m *GroupRepository) GetByID(id int) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return group, nil
}

func (m *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, g := range m.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List() ([]*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var groups []*models.Group
	for _, g := range m.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

func (m *GroupRepository) Update(group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.groups[group.ID]; !exists {
		return repositories.ErrNotFound
	}
	for _, g := range m.groups {
		if g.ID != group.ID && g.Slug == group.Slug {
			return repositories.ErrDuplicate
		}
	}
	m.groups[group.ID] = group
	return nil
}

func (m *GroupRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.groups[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

func (m *GroupRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.groups), nil
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) matching(q repositories.PostQuery) []*models.Post {
	var posts []*models.Post
	for _, post := range m.posts {
		if q.AuthorID != 0 && post.AuthorID != q.AuthorID {
			continue
		}
		if q.GroupID != 0 && post.GroupID != q.GroupID {
			continue
		}
		posts = append(posts, post)
	}
	repositories.SortPostsNewestFirst(posts)
	return posts
}

func (m *PostRepository) Find(q repositories.PostQuery) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := m.matching(q)
	if q.Offset >= len(posts) {
		return []*models.Post{}, nil
	}
	end := len(posts)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return posts[q.Offset:end], nil
}

func (m *PostRepository) Count(q repositories.PostQuery) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.matching(q)), nil
}

func (m *PostRepository) Latest() (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := m.matching(repositories.PostQuery{})
	if len(posts) == 0 {
		return nil, repositories.ErrNotFound
	}
	return posts[0], nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (m *CommentRepository) sorted(keep func(*models.Comment) bool) []*models.Comment {
	var comments []*models.Comment
	for id := 1; id < m.nextID; id++ {
		if c, exists := m.comments[id]; exists && keep(c) {
			comments = append(comments, c)
		}
	}
	return comments
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.sorted(func(c *models.Comment) bool { return c.PostID == postID }), nil
}

func (m *CommentRepository) List() ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.sorted(func(*models.Comment) bool { return true }), nil
}

func (m *CommentRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.comments), nil
}

func (m *CommentRepository) CountByPost(postID int) (int, error) {
	comments, _ := m.ListByPost(postID)
	return len(comments), nil
}

func (m *CommentRepository) Latest() (*models.Comment, error) {
	comments, _ := m.List()
	if len(comments) == 0 {
		return nil, repositories.ErrNotFound
	}
	return comments[len(comments)-1], nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}
