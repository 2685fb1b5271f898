package services

import "yatube/app/models"

// PostsPerPage is the size of every post listing.
const PostsPerPage = 10

// Page is one page of a post listing.
type Page struct {
	Posts    []*models.Post
	Number   int
	NumPages int
	Total    int
}

func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page) PreviousNumber() int {
	return p.Number - 1
}

func (p *Page) NextNumber() int {
	return p.Number + 1
}

// pageBounds clamps number into [1, numPages] the way a forgiving paginator
// does: anything below one shows the first page, anything past the end
// shows the last.
func pageBounds(number, total int) (page, numPages, offset int) {
	numPages = (total + PostsPerPage - 1) / PostsPerPage
	if numPages < 1 {
		numPages = 1
	}
	page = number
	if page < 1 {
		page = 1
	}
	if page > numPages {
		page = numPages
	}
	return page, numPages, (page - 1) * PostsPerPage
}
