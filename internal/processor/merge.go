package processor

import "resume-ai-go/internal/types"

// Merge 把模型提取出的文档合并进编辑器中已有的文档，返回新文档，两个输入都不会被修改。
//
//   - 照片始终取自已有文档，模型输出中的照片一律忽略
//   - 姓名、求职意向、个人信息项只有在提取结果非空时才覆盖
//   - 页面整体替换：提取结果有页面时替换全部页面，否则保留原页面
//   - 模板始终取自已有文档
func Merge(existing, extracted *types.ResumeDocument) types.ResumeDocument {
	var out types.ResumeDocument
	if existing != nil {
		out = types.Clone(*existing)
	}
	if extracted == nil {
		return out
	}

	if extracted.Personal.Name != "" {
		out.Personal.Name = extracted.Personal.Name
	}
	if extracted.Personal.Objective != "" {
		out.Personal.Objective = extracted.Personal.Objective
	}

	fresh := types.Clone(*extracted)
	if len(fresh.Personal.Items) > 0 {
		out.Personal.Items = fresh.Personal.Items
	}
	if len(fresh.Pages) > 0 {
		out.Pages = fresh.Pages
	}
	return out
}
