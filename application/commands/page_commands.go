package commands

import (
	"errors"

	"github.com/google/uuid"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
	apperrors "loopsite/pkg/errors"
	"loopsite/pkg/utils"
)

// SavePageCommand creates or replaces a generic page
type SavePageCommand struct {
	Page pages.Page
}

// NewSavePageCommand normalizes the page path and gives every section
// without an id a fresh one. The caller's section slice is not modified.
func NewSavePageCommand(page pages.Page) SavePageCommand {
	page.Path = pages.NormalizePath(page.Path)
	list := make([]sections.Section, len(page.Sections))
	copy(list, page.Sections)
	page.Sections = sections.AssignMissingIDs(list, func() string { return uuid.NewString() })
	return SavePageCommand{Page: page}
}

// Validate checks page metadata and every section strictly
func (c SavePageCommand) Validate() error {
	if c.Page.Path == "" {
		return apperrors.NewValidationError("path is required")
	}
	if err := utils.ValidateStruct(c.Page); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := sections.Validate(c.Page.Sections); err != nil {
		appErr := apperrors.NewValidationError("invalid sections").WithCode(apperrors.CodeInvalidSections)
		if verr, ok := sections.AsValidationError(err); ok {
			return appErr.WithDetails(map[string]interface{}{"problems": verr.Problems})
		}
		return appErr.WithCause(err)
	}
	return nil
}

// DeletePageCommand removes a generic page
type DeletePageCommand struct {
	Path string
}

// Validate validates the DeletePageCommand
func (c DeletePageCommand) Validate() error {
	if pages.NormalizePath(c.Path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// SaveSlotOverridesCommand replaces the slot overrides of a designed page
type SaveSlotOverridesCommand struct {
	Path      string
	Overrides slots.Overrides
}

// MaxSlotOverrides bounds the size of one overrides document.
const MaxSlotOverrides = 100

// Validate checks the shape of the command. Whether the ids are declared
// depends on the page and is checked by the handler.
func (c SaveSlotOverridesCommand) Validate() error {
	if len(c.Overrides) > MaxSlotOverrides {
		return errors.New("too many slot overrides")
	}
	return nil
}
