package registry

import (
	"strings"

	"github.com/studiowebux/restdeck/internal/types"
)

// Defaults returns the users, posts and todos descriptors rooted at baseURL
func Defaults(baseURL string) []types.Collection {
	base := strings.TrimRight(baseURL, "/")

	return []types.Collection{
		{
			Key:   "users",
			Title: "Users",
			URL:   base + "/users",
			Fields: []types.Field{
				textField("name", "Name", true),
				textField("username", "Username", true),
				textField("email", "Email", true),
				textField("phone", "Phone", false),
				textField("website", "Website", false),
			},
		},
		{
			Key:   "posts",
			Title: "Posts",
			URL:   base + "/posts",
			Fields: []types.Field{
				textField("title", "Title", true),
				{Name: "body", Label: "Body", Kind: types.KindLongText, Required: true, Display: true, Editable: true, Placeholder: "Enter body"},
			},
		},
		{
			Key:   "todos",
			Title: "Todos",
			URL:   base + "/todos",
			Fields: []types.Field{
				textField("title", "Title", true),
				{Name: "completed", Label: "Completed", Kind: types.KindBoolean, Required: true, Display: true, Editable: true, Placeholder: "Select status"},
			},
		},
	}
}

func textField(name, label string, required bool) types.Field {
	return types.Field{
		Name:        name,
		Label:       label,
		Kind:        types.KindText,
		Required:    required,
		Display:     true,
		Editable:    true,
		Placeholder: "Enter " + strings.ToLower(label),
	}
}
