package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"resume-ai-go/internal/types"
)

var (
	salvageName      = regexp.MustCompile(`"name"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	salvageObjective = regexp.MustCompile(`"objective"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// salvage 整体解析失败时，只用正则捞出姓名和求职意向。
// 返回的文档 Pages 为空，合并时不会覆盖已有的页面。
func salvage(text string) (*types.ResumeDocument, bool) {
	name := salvageString(salvageName, text)
	objective := salvageString(salvageObjective, text)
	if name == "" && objective == "" {
		return nil, false
	}
	return &types.ResumeDocument{
		Personal: types.PersonalInfo{Name: name, Objective: objective},
		Pages:    []types.Page{},
	}, true
}

func salvageString(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &s); err != nil {
		s = m[1]
	}
	return strings.TrimSpace(s)
}
