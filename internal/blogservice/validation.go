package blogservice

import (
	"strings"

	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/genservice"
)

const maxTitleLength = 200

func validateOriginalText(v *common.Validator, text string) {
	v.Check(strings.TrimSpace(text) != "", "originalText", "must be provided")
	v.Check(genservice.CharacterCount(text) >= genservice.MinSourceCharacters, "originalText", "must be at least 100 characters long")
}

func validateUpdate(v *common.Validator, req UpdatePostRequest) {
	if req.Title != nil {
		v.Check(strings.TrimSpace(*req.Title) != "", "title", "must not be empty")
		v.Check(v.CheckStringLength(*req.Title, 1, maxTitleLength), "title", "must be at most 200 characters long")
	}
	if req.Content != nil {
		v.Check(strings.TrimSpace(*req.Content) != "", "content", "must not be empty")
	}
}
