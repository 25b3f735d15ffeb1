package prompt

// SchemaExample 输出 JSON 的结构参考，嵌入到系统指令中
const SchemaExample = `{
  "personal": {
    "name": "姓名",
    "objective": "求职意向",
    "photo": "",
    "items": [
      { "id": "i1", "label": "手机号码", "value": "13800000000" },
      { "id": "i2", "label": "电子邮箱", "value": "name@example.com" }
    ]
  },
  "pages": [
    {
      "id": "p1",
      "sections": [
        {
          "id": "s1", "type": "education", "title": "教育背景", "iconName": "GraduationCap",
          "content": [
            { "id": "e1", "period": "2021.09-2025.06", "school": "学校", "major": "专业", "degree": "学士", "gpa": "3.6", "courses": "主修课程" }
          ]
        },
        {
          "id": "s2", "type": "experience", "title": "实习经历", "iconName": "Briefcase",
          "content": [
            {
              "id": "x1", "period": "2025.02-2025.05", "organization": "公司", "role": "职位", "summary": "",
              "points": [ { "id": "pt1", "subtitle": "要点标题", "detail": "具体描述" } ]
            }
          ]
        },
        { "id": "s3", "type": "text", "title": "自我评价", "iconName": "User", "content": "一段文字" }
      ]
    }
  ]
}`

// outputRules 所有结构化模式共用的输出约束
const outputRules = `输出要求（必须严格遵守）：
1. 只输出一个 JSON 对象：第一个字符必须是 {，最后一个字符必须是 }。
2. 不要使用 Markdown 代码块，不要输出 ` + "```" + `，不要输出任何解释、前言、总结或思考过程。
3. 字符串中的换行写成 \n，只使用双引号，不要添加注释，不要出现多余的逗号。
4. photo 字段一律输出空字符串，不要输出图片数据或链接。
5. 所有 id 使用简短的随机字符串，并且在整份文档中唯一。`

// fieldRules 字段语义约束
const fieldRules = `字段规则：
1. 姓名(name)和求职意向(objective)是固定字段；电话、邮箱、出生年月、所在城市等其他个人信息全部放入 items 数组，每项包含 id、label、value。
2. 教育经历章节的 type 为 "education"，content 为数组，每项包含 id、period、school、major、degree、gpa、courses。
3. 工作、实习、项目经历章节的 type 为 "experience"，content 为数组，每项包含 id、period、organization、role、summary 和 points（每个要点包含 id、subtitle、detail）。
4. 自我评价、专业技能、荣誉奖项等自由文本章节的 type 为 "text"，content 为字符串。
5. 原文没有的信息填空字符串，不要编造。`

const extractSystemTemplate = `你是一个极其精准的简历信息提取引擎。你的唯一任务是把用户提供的简历原始内容转换为一个 JSON 对象。

%s

%s

输出 JSON 结构参考：
%s`

const optimizeSystemTemplate = `你是一名资深的职业咨询顾问和简历优化专家。请根据目标岗位要求改写用户的简历，使其更贴合岗位：
- 调整章节顺序和措辞，突出与岗位相关的经历和技能；
- 使用结果导向的语言，尽量量化成果，保持语言精炼；
- 不得虚构任何学校、公司、经历或数据。

%s

%s

输出 JSON 结构参考：
%s`

// polishInstructions 不同类型文本的润色指令
var polishInstructions = map[PolishKind]string{
	PolishBullet:    "你是一名资深的职业咨询顾问。请将以下简历描述进行专业化润色，使用具有结果导向（Result-oriented）的语言，多用量化词汇，保持语言精炼。直接输出文字，不要包含解释。",
	PolishSummary:   "你是一名资深的职业咨询顾问。请将以下自我评价进行专业化润色，使其更具逻辑性，突显个人核心竞争力。保持在150字左右。直接输出文字，不要包含解释。",
	PolishEducation: "润色教育背景描述，突显学术成就和核心技能。直接输出文字，不要包含解释。",
}
