package ws

import (
	"errors"
	"strings"
)

var ErrEmptyNickname = errors.New("nickname cannot be empty")

// SanitizeNickname trims, caps at 30 characters, and strips characters that
// could leak into markup on the other client.
func SanitizeNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	if nickname == "" {
		return "", ErrEmptyNickname
	}
	if runes := []rune(nickname); len(runes) > maxNicknameLen {
		nickname = string(runes[:maxNicknameLen])
	}
	nickname = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '\'', '"':
			return -1
		}
		return r
	}, nickname)
	if nickname == "" {
		return "", ErrEmptyNickname
	}
	return nickname, nil
}
