package models

import (
	"strings"

	"github.com/gosimple/slug"
)

// SlugMaxLength matches the storage limit of Group.Slug.
const SlugMaxLength = 50

// Slugify turns a title into a URL-safe slug, transliterating non-Latin
// scripts and cutting the result to SlugMaxLength.
func Slugify(title string) string {
	s := slug.Make(title)
	if len(s) > SlugMaxLength {
		s = strings.Trim(s[:SlugMaxLength], "-")
	}
	return s
}

// PrepopulateSlug fills an empty slug from the title.
func (g *Group) PrepopulateSlug() {
	if strings.TrimSpace(g.Slug) == "" {
		g.Slug = Slugify(g.Title)
	}
}

// Validate checks the group fields.
func (g *Group) Validate() error {
	return validate.Struct(g)
}

func (g *Group) String() string {
	return g.Title
}
