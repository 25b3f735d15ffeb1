package types

// DefaultPhotoURL 新建简历时使用的占位头像
const DefaultPhotoURL = "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2?q=80&w=256&h=320&auto=format&fit=crop"

// DefaultDocument 返回编辑器初始简历，每次调用都是新副本
func DefaultDocument() ResumeDocument {
	return ResumeDocument{
		TemplateID: TemplateClassic,
		Personal: PersonalInfo{
			Name:      "简历",
			Objective: "财务助理 / 后端开发工程师",
			Photo:     DefaultPhotoURL,
			Items: []PersonalInfoItem{
				{ID: "pi-1", Label: "出生年月", Value: "2003年3月"},
				{ID: "pi-2", Label: "毕业院校", Value: "简历佳大学"},
				{ID: "pi-3", Label: "手机号码", Value: "13066668888"},
				{ID: "pi-4", Label: "电子邮箱", Value: "755015108@qq.com"},
				{ID: "pi-5", Label: "居住城市", Value: "北京市"},
			},
		},
		Pages: []Page{
			{
				ID: "page-1",
				Sections: []Section{
					{
						ID:       "sec-1",
						Type:     SectionEducation,
						Title:    "教育背景",
						IconName: IconGraduationCap,
						Education: []EducationEntry{
							{
								ID:      "edu-1",
								Period:  "2021.09-2025.06",
								School:  "简历佳大学",
								Major:   "会计学专业",
								Degree:  "学士",
								GPA:     "3.6 (专业前10%)",
								Courses: "财务会计，管理会计，财务管理，审计学，税法，经济法，会计信息系统，统计学。",
							},
						},
					},
					{
						ID:       "sec-2",
						Type:     SectionExperience,
						Title:    "实习经历",
						IconName: IconBriefcase,
						Experience: []ExperienceEntry{
							{
								ID:           "exp-1",
								Period:       "2025.02-2025.05",
								Organization: "简历佳会计师事务所",
								Role:         "审计助理",
								Points: ExperiencePoints{
									{ID: "p1", Subtitle: "审计执行", Detail: "协助完成审计工作：参与3家中小型企业年度财务报表审计项目，负责货币资金、应收账款、存货等科目的审计程序执行。"},
									{ID: "p2", Subtitle: "数据核对", Detail: "运用 Excel 函数（VLOOKUP、SUMIF等）对企业提供的财务数据与原始凭证进行交叉核对，保证财务数据准确性。"},
									{ID: "p3", Subtitle: "报告撰写", Detail: "协助撰写审计报告：根据审计结果，协助项目负责人整理审计发现的问题。"},
								},
							},
						},
					},
				},
			},
		},
	}
}
