package repositories

import "yatube/app/models"

// PostQuery narrows and pages a post listing. Zero values mean "any" and
// "no limit".
type PostQuery struct {
	AuthorID int
	GroupID  int
	Limit    int
	Offset   int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	List() ([]*models.User, error)
	Count() (int, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
	Update(group *models.Group) error
	Delete(id int) error
	Count() (int, error)
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	Find(q PostQuery) ([]*models.Post, error)
	Count(q PostQuery) (int, error)
	Latest() (*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	List() ([]*models.Comment, error)
	Count() (int, error)
	CountByPost(postID int) (int, error)
	Latest() (*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
}
