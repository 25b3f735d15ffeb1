package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Section 简历章节。content 在 JSON 中是一个按 type 区分形态的字段，
// 在 Go 中拆成三个互斥字段，只有与 Type 对应的那个有效。
type Section struct {
	ID         string
	Type       SectionType
	Title      string
	IconName   string
	Education  []EducationEntry
	Experience []ExperienceEntry
	Text       string
}

type sectionJSON struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Title    FlexString      `json:"title"`
	IconName string          `json:"iconName"`
	Content  json.RawMessage `json:"content"`
}

// MarshalJSON 输出与 Type 对应的 content
func (s Section) MarshalJSON() ([]byte, error) {
	out := struct {
		ID       string      `json:"id"`
		Type     SectionType `json:"type"`
		Title    string      `json:"title"`
		IconName string      `json:"iconName"`
		Content  interface{} `json:"content"`
	}{ID: s.ID, Type: s.Type, Title: s.Title, IconName: s.IconName}

	switch s.Type {
	case SectionEducation:
		if s.Education == nil {
			out.Content = []EducationEntry{}
		} else {
			out.Content = s.Education
		}
	case SectionExperience:
		if s.Experience == nil {
			out.Content = []ExperienceEntry{}
		} else {
			out.Content = s.Experience
		}
	default:
		out.Type = SectionText
		out.Content = s.Text
	}
	return json.Marshal(out)
}

// UnmarshalJSON 解码章节，并保证 content 的形态与 type 一致：
//   - type 缺失或未知时按 content 的形态推断
//   - 列表类型收到字符串时尝试按内嵌 JSON 解析，失败则为空列表
//   - 文本类型收到数组或对象时压平成多行文本
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Section{
		ID:       strings.TrimSpace(raw.ID),
		Title:    strings.TrimSpace(raw.Title.String()),
		IconName: strings.TrimSpace(raw.IconName),
	}

	content := bytes.TrimSpace(raw.Content)
	s.Type = normalizeSectionType(raw.Type)
	if !s.Type.Valid() {
		s.Type = inferSectionType(content)
	}

	switch s.Type {
	case SectionEducation:
		s.Education = decodeEntries[EducationEntry](content)
	case SectionExperience:
		s.Experience = decodeEntries[ExperienceEntry](content)
	default:
		s.Text = decodeText(content)
	}
	return nil
}

// inferSectionType 根据 content 的字段推断章节类型
func inferSectionType(content []byte) SectionType {
	if len(content) == 0 || content[0] != '[' {
		return SectionText
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(content, &items); err != nil || len(items) == 0 {
		return SectionText
	}
	first := items[0]
	for _, key := range []string{"school", "major", "degree", "gpa", "courses"} {
		if _, ok := first[key]; ok {
			return SectionEducation
		}
	}
	for _, key := range []string{"organization", "role", "points", "company"} {
		if _, ok := first[key]; ok {
			return SectionExperience
		}
	}
	return SectionText
}

func decodeEntries[T any](content []byte) []T {
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		return nil
	}

	// 模型偶尔把整个数组当作字符串返回
	if content[0] == '"' {
		var embedded string
		if err := json.Unmarshal(content, &embedded); err != nil {
			return nil
		}
		content = []byte(strings.TrimSpace(embedded))
		if len(content) == 0 {
			return nil
		}
	}

	switch content[0] {
	case '{':
		var one T
		if err := json.Unmarshal(content, &one); err != nil {
			return nil
		}
		return []T{one}
	case '[':
		var list []T
		if err := json.Unmarshal(content, &list); err != nil {
			return nil
		}
		return list
	}
	return nil
}

func decodeText(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	var text FlexString
	if err := json.Unmarshal(content, &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text.String())
}

// ExperiencePoints 经历要点列表，兼容模型直接输出字符串数组的情况
type ExperiencePoints []ExperiencePoint

// UnmarshalJSON 接受对象数组、字符串数组或单个字符串
func (p *ExperiencePoints) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}

	if data[0] == '"' {
		var line string
		if err := json.Unmarshal(data, &line); err != nil {
			return err
		}
		*p = pointsFromLines(strings.Split(line, "\n"))
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	points := make(ExperiencePoints, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '{' {
			var point ExperiencePoint
			if err := json.Unmarshal(item, &point); err != nil {
				return err
			}
			points = append(points, point)
			continue
		}
		var detail FlexString
		if err := json.Unmarshal(item, &detail); err != nil {
			return err
		}
		if d := strings.TrimSpace(detail.String()); d != "" {
			points = append(points, ExperiencePoint{Detail: FlexString(d)})
		}
	}
	*p = points
	return nil
}

func pointsFromLines(lines []string) ExperiencePoints {
	points := make(ExperiencePoints, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•·*"))
		if line != "" {
			points = append(points, ExperiencePoint{Detail: FlexString(line)})
		}
	}
	return points
}
