package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	passwordLength = 16

	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+"
)

// GeneratePassword - 대문자/소문자/숫자/특수문자를 각각 최소 1개 포함하는 임시 비밀번호 생성
func GeneratePassword() (string, error) {
	all := upperChars + lowerChars + digitChars + symbolChars
	buf := make([]byte, 0, passwordLength)

	for _, set := range []string{upperChars, lowerChars, digitChars, symbolChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < passwordLength {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return int(v.Int64()), nil
}
