package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// AutofillModulePrefix 自动填充模块
	AutofillModulePrefix = "autofill"

	// EntityAnswer 模型回答实体
	EntityAnswer = "answer"

	// KeyAutofillAnswer 模型回答缓存 (STRING)
	// 格式: app:autofill:answer:{promptMD5}
	KeyAutofillAnswer = AppPrefix + ":" + AutofillModulePrefix + ":" + EntityAnswer + ":%s"
)
