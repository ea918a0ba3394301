package server

import (
	"fmt"
	"strings"
)

const (
	maxNameLength   = 20
	maxAvatarLength = 128
	maxTitleLength  = 40
)

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", errValidation("name is required")
	}
	if len(trimmed) > maxNameLength {
		return "", errValidation(fmt.Sprintf("name must be %d characters or fewer", maxNameLength))
	}
	if !isSafeText(trimmed) {
		return "", errValidation("name contains unsupported characters")
	}
	return trimmed, nil
}

func validateGender(gender string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case genderNone, "none":
		return genderNone, nil
	case genderMale:
		return genderMale, nil
	case genderFemale:
		return genderFemale, nil
	default:
		return "", errValidation("gender must be male, female or empty")
	}
}

func validateRole(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", roleTypePlayer:
		return roleTypePlayer, nil
	case roleTypeSpectator:
		return roleTypeSpectator, nil
	default:
		return "", errValidation("role must be player or spectator")
	}
}

func validateAvatarRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if len(trimmed) > maxAvatarLength {
		return "", errValidation(fmt.Sprintf("avatar reference must be %d characters or fewer", maxAvatarLength))
	}
	return trimmed, nil
}

func validateTitle(title string) (string, error) {
	trimmed := normalizeText(title)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > maxTitleLength {
		return "", errValidation(fmt.Sprintf("title must be %d characters or fewer", maxTitleLength))
	}
	if !isSafeText(trimmed) {
		return "", errValidation("title contains unsupported characters")
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.', '!':
			continue
		default:
			return false
		}
	}
	return true
}
