package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello, World!"))
	assert.Equal(t, "go-tips-and-tricks", Slugify("  Go tips & tricks "))

	cyrillic := Slugify("Тестовый заголовок")
	assert.NotEmpty(t, cyrillic)
	assert.Regexp(t, `^[a-z0-9-]+$`, cyrillic)
	assert.True(t, strings.HasPrefix(cyrillic, "testov"), cyrillic)

	long := Slugify(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(long), SlugMaxLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestGroupPrepopulateSlug(t *testing.T) {
	g := &Group{Title: "Cats and Dogs"}
	g.PrepopulateSlug()
	assert.Equal(t, "cats-and-dogs", g.Slug)

	g = &Group{Title: "Cats and Dogs", Slug: "pets"}
	g.PrepopulateSlug()
	assert.Equal(t, "pets", g.Slug)
}

func TestGroupValidation(t *testing.T) {
	tests := []struct {
		name    string
		group   *Group
		wantErr bool
	}{
		{"valid group", &Group{Title: "Тестовый заголовок", Slug: "test-slug"}, false},
		{"missing title", &Group{Slug: "test-slug"}, true},
		{"missing slug", &Group{Title: "Title"}, true},
		{"bad slug", &Group{Title: "Title", Slug: "not a slug"}, true},
		{"slug too long", &Group{Title: "Title", Slug: strings.Repeat("a", 51)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.group.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	g := &Group{Slug: "bad slug"}
	errs := FieldErrors(g.Validate())
	assert.Equal(t, "This field is required.", errs["title"])
	assert.Contains(t, errs["slug"], "valid slug")

	assert.Nil(t, FieldErrors(nil))
	assert.Equal(t, map[string]string{"__all__": "boom"}, FieldErrors(assertErr("boom")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
