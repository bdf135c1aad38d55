package services

import (
	_ "embed"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	minPasswordLength = 8
	// 相似度 = 1 - 编辑距离 / 较长字符串长度
	maxPasswordSimilarity = 0.7
)

//go:embed common_passwords.txt
var commonPasswordsList string

var commonPasswords = loadCommonPasswords(commonPasswordsList)

var nonWordPattern = regexp.MustCompile(`\W+`)

func loadCommonPasswords(list string) map[string]struct{} {
	passwords := make(map[string]struct{})
	for _, line := range strings.Split(list, "\n") {
		if p := strings.ToLower(strings.TrimSpace(line)); p != "" {
			passwords[p] = struct{}{}
		}
	}
	return passwords
}

type userAttribute struct {
	label string
	value string
}

// passwordProblems 返回密码不满足的全部规则, 顺序固定: 相似, 长度, 常见, 纯数字
func passwordProblems(password, username, email string) []string {
	var problems []string

	attrs := []userAttribute{
		{label: "username", value: username},
		{label: "email address", value: email},
	}
	for _, attr := range attrs {
		if tooSimilar(password, attr.value) {
			problems = append(problems, "The password is too similar to the "+attr.label+".")
			break
		}
	}

	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}

	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}

	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

// tooSimilar 同时比较完整属性值和按非单词字符切开的各部分
func tooSimilar(password, value string) bool {
	if value == "" {
		return false
	}
	password = strings.ToLower(password)
	value = strings.ToLower(value)

	parts := append([]string{value}, nonWordPattern.Split(value, -1)...)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if similarity(password, part) >= maxPasswordSimilarity {
			return true
		}
	}
	return false
}

func similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
