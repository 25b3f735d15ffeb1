package types

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 生成新的条目 ID
func NewID() string {
	return uuid.NewString()
}

// Normalize 整理模型抽取出的文档：
// 去除首尾空白，补齐缺失或重复的 ID，丢弃未知模板。
// 章节 content 的形态在解码阶段已经与 type 对齐。
func Normalize(doc *ResumeDocument) {
	if doc == nil {
		return
	}
	if !doc.TemplateID.Valid() {
		doc.TemplateID = ""
	}

	ids := idAssigner{seen: make(map[string]bool)}

	p := &doc.Personal
	p.Name = strings.TrimSpace(p.Name)
	p.Objective = strings.TrimSpace(p.Objective)
	p.Photo = strings.TrimSpace(p.Photo)
	items := p.Items[:0]
	for _, item := range p.Items {
		item.Label = trimFlex(item.Label)
		item.Value = trimFlex(item.Value)
		if item.Label == "" && item.Value == "" {
			continue
		}
		item.ID = ids.assign(item.ID)
		items = append(items, item)
	}
	if len(items) == 0 {
		p.Items = nil
	} else {
		p.Items = items
	}

	for i := range doc.Pages {
		page := &doc.Pages[i]
		page.ID = ids.assign(page.ID)
		for j := range page.Sections {
			normalizeSection(&page.Sections[j], &ids)
		}
	}
}

func normalizeSection(s *Section, ids *idAssigner) {
	s.ID = ids.assign(s.ID)
	if !s.Type.Valid() {
		s.Type = SectionText
	}
	if s.IconName == "" {
		s.IconName = defaultIcon(s.Type)
	}
	for i := range s.Education {
		e := &s.Education[i]
		e.ID = ids.assign(e.ID)
		e.Period, e.School, e.Major = trimFlex(e.Period), trimFlex(e.School), trimFlex(e.Major)
		e.Degree, e.GPA, e.Courses = trimFlex(e.Degree), trimFlex(e.GPA), trimFlex(e.Courses)
	}
	for i := range s.Experience {
		e := &s.Experience[i]
		e.ID = ids.assign(e.ID)
		e.Period, e.Organization = trimFlex(e.Period), trimFlex(e.Organization)
		e.Role, e.Summary = trimFlex(e.Role), trimFlex(e.Summary)
		for k := range e.Points {
			pt := &e.Points[k]
			pt.ID = ids.assign(pt.ID)
			pt.Subtitle, pt.Detail = trimFlex(pt.Subtitle), trimFlex(pt.Detail)
		}
	}
}

func defaultIcon(t SectionType) string {
	switch t {
	case SectionEducation:
		return IconGraduationCap
	case SectionExperience:
		return IconBriefcase
	}
	return IconUser
}

func trimFlex(f FlexString) FlexString {
	return FlexString(strings.TrimSpace(string(f)))
}

// idAssigner 保证整份文档内 ID 唯一
type idAssigner struct {
	seen map[string]bool
}

func (a *idAssigner) assign(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || a.seen[id] {
		id = NewID()
	}
	a.seen[id] = true
	return id
}

// EnsurePage 保证文档至少有一页
func EnsurePage(doc *ResumeDocument) {
	if doc != nil && len(doc.Pages) == 0 {
		doc.Pages = []Page{{ID: NewID(), Sections: []Section{}}}
	}
}

// Clone 深拷贝文档，调用方可以放心修改返回值。
// nil 切片保持为 nil，空切片保持为空切片。
func Clone(doc ResumeDocument) ResumeDocument {
	out := doc
	out.Personal.Items = cloneSlice(doc.Personal.Items)
	if doc.Pages != nil {
		out.Pages = make([]Page, len(doc.Pages))
		for i, p := range doc.Pages {
			out.Pages[i] = Page{ID: p.ID}
			if p.Sections != nil {
				out.Pages[i].Sections = make([]Section, len(p.Sections))
				for j, s := range p.Sections {
					out.Pages[i].Sections[j] = cloneSection(s)
				}
			}
		}
	}
	return out
}

func cloneSection(s Section) Section {
	out := s
	out.Education = cloneSlice(s.Education)
	if s.Experience != nil {
		out.Experience = make([]ExperienceEntry, len(s.Experience))
		for i, e := range s.Experience {
			out.Experience[i] = e
			out.Experience[i].Points = cloneSlice(e.Points)
		}
	}
	return out
}

func cloneSlice[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	out := make(S, len(s))
	copy(out, s)
	return out
}
