package types

import "strings"

// SectionType 表示简历章节的内容形态
type SectionType string

const (
	// SectionEducation 教育经历章节，content 为 EducationEntry 列表
	SectionEducation SectionType = "education"
	// SectionExperience 工作/项目/实习经历章节，content 为 ExperienceEntry 列表
	SectionExperience SectionType = "experience"
	// SectionText 纯文本章节（自我评价、技能等）
	SectionText SectionType = "text"
)

// Valid 判断章节类型是否为已知类型
func (t SectionType) Valid() bool {
	switch t {
	case SectionEducation, SectionExperience, SectionText:
		return true
	}
	return false
}

func normalizeSectionType(raw string) SectionType {
	return SectionType(strings.ToLower(strings.TrimSpace(raw)))
}

// TemplateID 表示简历排版模板
type TemplateID string

const (
	TemplateClassic TemplateID = "classic"
	TemplateModern  TemplateID = "modern"
	TemplateSidebar TemplateID = "sidebar"
)

// Valid 判断模板是否为已知模板
func (t TemplateID) Valid() bool {
	switch t {
	case TemplateClassic, TemplateModern, TemplateSidebar:
		return true
	}
	return false
}

// 常用图标名称，与前端图标库保持一致
const (
	IconGraduationCap = "GraduationCap"
	IconBriefcase     = "Briefcase"
	IconUser          = "User"
	IconAward         = "Award"
)

// ResumeDocument 编辑器中的整份简历
//
// 由模型抽取得到的文档可能是不完整的：缺失字段保持零值，
// 合并策略以"非空才覆盖"的规则处理。
type ResumeDocument struct {
	TemplateID TemplateID   `json:"templateId,omitempty"`
	Personal   PersonalInfo `json:"personal"`
	Pages      []Page       `json:"pages"`
}

// PartialResumeDocument 模型抽取出的（可能残缺的）文档
type PartialResumeDocument = ResumeDocument

// PersonalInfo 个人信息区块
type PersonalInfo struct {
	Name      string             `json:"name"`
	Objective string             `json:"objective,omitempty"`
	Photo     string             `json:"photo"`
	Items     []PersonalInfoItem `json:"items"`
}

// PersonalInfoItem 动态个人信息项，例如手机号码、电子邮箱
type PersonalInfoItem struct {
	ID    string     `json:"id"`
	Label FlexString `json:"label"`
	Value FlexString `json:"value"`
}

// Page 简历中的一页
type Page struct {
	ID       string    `json:"id"`
	Sections []Section `json:"sections"`
}

// EducationEntry 教育经历条目
type EducationEntry struct {
	ID      string     `json:"id"`
	Period  FlexString `json:"period"`
	School  FlexString `json:"school"`
	Major   FlexString `json:"major"`
	Degree  FlexString `json:"degree"`
	GPA     FlexString `json:"gpa"`
	Courses FlexString `json:"courses"`
}

// ExperienceEntry 经历条目
type ExperienceEntry struct {
	ID           string           `json:"id"`
	Period       FlexString       `json:"period"`
	Organization FlexString       `json:"organization"`
	Role         FlexString       `json:"role"`
	Summary      FlexString       `json:"summary"`
	Points       ExperiencePoints `json:"points"`
}

// ExperiencePoint 经历中的一条要点
type ExperiencePoint struct {
	ID       string     `json:"id"`
	Subtitle FlexString `json:"subtitle"`
	Detail   FlexString `json:"detail"`
}

// IsEmpty 文档是否不含任何可用内容
func (d *ResumeDocument) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Personal.Name == "" && d.Personal.Objective == "" &&
		len(d.Personal.Items) == 0 && len(d.Pages) == 0
}

// SectionCount 返回所有页面中的章节总数
func (d *ResumeDocument) SectionCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Sections)
	}
	return n
}
