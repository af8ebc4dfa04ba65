package contentservice

import (
	"github.com/karasuhime/inkwell/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 50), "title", "must not be more than 50 characters long")
}

func validateDescription(v *common.Validator, description string) {
	v.Check(description != "", "description", "must be provided")
	v.Check(v.CheckStringLength(description, 5, 300000), "description", "must be between 5 and 300000 characters long")
}

func validateCommentText(v *common.Validator, text string) {
	v.Check(text != "", "comment", "must be provided")
	v.Check(v.CheckStringLength(text, 1, 3000), "comment", "must not be more than 3000 characters long")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
