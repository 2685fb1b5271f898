package admin

// PostAdmin lists posts with an inline group selector.
func PostAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:              "post",
		VerboseName:       "post",
		VerboseNamePlural: "posts",
		Fields: []Field{
			{Name: "text", Label: "Text", Kind: KindTextarea, Required: true},
			{Name: "pub_date", Label: "Publication date", Kind: KindTime, ReadOnly: true},
			{Name: "author", Label: "Author", Kind: KindRef, Required: true},
			{Name: "group", Label: "Group", Kind: KindRef},
			{Name: "image", Label: "Image", Kind: KindText, ReadOnly: true},
		},
		ListDisplay:       []string{"pk", "text", "pub_date", "author", "group"},
		ListEditable:      []string{"group"},
		SearchFields:      []string{"text"},
		ListFilter:        []string{"pub_date"},
		EmptyValueDisplay: EmptyValueDisplay,
	}
}

// GroupAdmin derives the slug from the title on the add form.
func GroupAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:              "group",
		VerboseName:       "group",
		VerboseNamePlural: "groups",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true},
			{Name: "slug", Label: "Slug", Kind: KindText},
			{Name: "description", Label: "Description", Kind: KindTextarea},
		},
		ListDisplay:        []string{"pk", "title", "description"},
		SearchFields:       []string{"title"},
		ListFilter:         []string{"title"},
		EmptyValueDisplay:  EmptyValueDisplay,
		PrepopulatedFields: map[string][]string{"slug": {"title"}},
	}
}

func CommentAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:              "comment",
		VerboseName:       "comment",
		VerboseNamePlural: "comments",
		Fields: []Field{
			{Name: "text", Label: "Text", Kind: KindTextarea, Required: true},
			{Name: "post", Label: "Post", Kind: KindRef, Required: true},
			{Name: "author", Label: "Author", Kind: KindRef, Required: true},
			{Name: "created", Label: "Created", Kind: KindTime, ReadOnly: true},
		},
		ListDisplay:       []string{"pk", "text", "post", "author", "created"},
		SearchFields:      []string{"text", "author"},
		ListFilter:        []string{"text", "author"},
		EmptyValueDisplay: EmptyValueDisplay,
	}
}
