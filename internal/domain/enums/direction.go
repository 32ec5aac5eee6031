package enums

import "strings"

type Direction string

const (
	DirectionLike Direction = "like"
	DirectionPass Direction = "pass"
)

func ParseDirection(input string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "like", "right":
		return DirectionLike, true
	case "pass", "left", "dislike":
		return DirectionPass, true
	default:
		return "", false
	}
}
