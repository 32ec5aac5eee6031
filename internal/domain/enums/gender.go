package enums

import "strings"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(input string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "male", "m":
		return GenderMale, true
	case "female", "f":
		return GenderFemale, true
	default:
		return "", false
	}
}
