package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	apperrors "loopsite/pkg/errors"
)

func TestNewSavePageCommand_AssignsIDsWithoutMutatingInput(t *testing.T) {
	list := []sections.Section{
		sections.New("", sections.HeroProps{Headline: "Hi"}),
		sections.New("kept", sections.ContentBlockProps{Body: "Body"}),
	}

	cmd := NewSavePageCommand(pages.Page{Path: "/blog/hello/", Title: "Hello", Sections: list})

	assert.Equal(t, "blog/hello", cmd.Page.Path)
	assert.NotEmpty(t, cmd.Page.Sections[0].ID)
	assert.Equal(t, "kept", cmd.Page.Sections[1].ID)
	assert.Empty(t, list[0].ID)
	assert.NoError(t, cmd.Validate())
}

func TestSavePageCommand_Validate(t *testing.T) {
	tests := []struct {
		name string
		page pages.Page
		code string
	}{
		{
			name: "missing path",
			page: pages.Page{Title: "T"},
		},
		{
			name: "missing title",
			page: pages.Page{Path: "blog/x"},
		},
		{
			name: "invalid props",
			page: pages.Page{Path: "blog/x", Title: "T", Sections: []sections.Section{
				sections.New("a", sections.HeroProps{}),
			}},
			code: apperrors.CodeInvalidSections,
		},
		{
			name: "duplicate ids",
			page: pages.Page{Path: "blog/x", Title: "T", Sections: []sections.Section{
				sections.New("a", sections.HeroProps{Headline: "1"}),
				sections.New("a", sections.HeroProps{Headline: "2"}),
			}},
			code: apperrors.CodeInvalidSections,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SavePageCommand{Page: tt.page}.Validate()

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			if tt.code != "" {
				assert.True(t, apperrors.IsCode(err, tt.code))
				assert.Contains(t, apperrors.GetAppError(err).Details, "problems")
			}
		})
	}
}

func TestDeletePageCommand_Validate(t *testing.T) {
	assert.Error(t, DeletePageCommand{Path: "/"}.Validate())
	assert.NoError(t, DeletePageCommand{Path: "/blog/x"}.Validate())
}
