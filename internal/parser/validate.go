package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"resume-ai-go/internal/types"
)

// documentSchema 只约束会影响解码的结构；叶子字段的类型由解码阶段宽松处理
const documentSchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["personal"]},
    {"required": ["pages"]}
  ],
  "properties": {
    "personal": {
      "type": "object",
      "properties": {
        "name": {"type": ["string", "null"]},
        "objective": {"type": ["string", "null"]},
        "items": {"type": "array", "items": {"type": "object"}}
      }
    },
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "sections": {"type": "array", "items": {"type": "object"}}
        }
      }
    }
  }
}`

var errNotObject = errors.New("top-level JSON value is not an object")

// documentValidator 检查候选 JSON 是否像一份简历文档
type documentValidator struct {
	schema *jsonschema.Schema
}

func newDocumentValidator() (*documentValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("resume_document.json", strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("resume_document.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &documentValidator{schema: schema}, nil
}

// decode 解析并校验候选文本，成功时返回整理前的文档
func (v *documentValidator) decode(text string) (*types.ResumeDocument, error) {
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errNotObject
	}
	coerceDocument(obj)

	if err := v.schema.Validate(obj); err != nil {
		return nil, fmt.Errorf("json does not look like a resume document: %w", err)
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var doc types.ResumeDocument
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode resume document: %w", err)
	}
	return &doc, nil
}

// 这些键的值必须是字符串
var stringKeys = map[string]bool{
	"id": true, "name": true, "objective": true, "photo": true,
	"type": true, "iconName": true, "templateId": true,
}

// coerceDocument 把模型常见的"差一点"的输出整理成可解码的形状：
// null 的 personal/pages 视为缺失，单个对象包装成数组，
// 字符串形式的个人信息项拆成 label/value，字符串键上的数字转成字符串
func coerceDocument(obj map[string]interface{}) {
	for _, key := range []string{"personal", "pages"} {
		if v, ok := obj[key]; ok && v == nil {
			delete(obj, key)
		}
	}

	if pages, ok := obj["pages"].(map[string]interface{}); ok {
		obj["pages"] = []interface{}{pages}
	}

	if personal, ok := obj["personal"].(map[string]interface{}); ok {
		switch items := personal["items"].(type) {
		case nil:
			delete(personal, "items")
		case map[string]interface{}:
			personal["items"] = itemsFromMap(items)
		case []interface{}:
			for i, item := range items {
				if s, ok := item.(string); ok {
					items[i] = itemFromString(s)
				}
			}
		}
	}

	if pages, ok := obj["pages"].([]interface{}); ok {
		for _, p := range pages {
			page, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			switch sections := page["sections"].(type) {
			case nil:
				delete(page, "sections")
			case map[string]interface{}:
				page["sections"] = []interface{}{sections}
			}
		}
	}

	coerceStringKeys(obj)
}

func coerceStringKeys(v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			if stringKeys[k] {
				switch c := child.(type) {
				case json.Number:
					val[k] = c.String()
					continue
				case bool:
					val[k] = fmt.Sprint(c)
					continue
				case nil:
					val[k] = ""
					continue
				}
			}
			coerceStringKeys(child)
		}
	case []interface{}:
		for _, child := range val {
			coerceStringKeys(child)
		}
	}
}

// itemFromString "手机：138..." -> {label: 手机, value: 138...}
func itemFromString(s string) map[string]interface{} {
	for _, sep := range []string{"：", ":"} {
		if label, value, ok := strings.Cut(s, sep); ok {
			return map[string]interface{}{"label": strings.TrimSpace(label), "value": strings.TrimSpace(value)}
		}
	}
	return map[string]interface{}{"label": "", "value": strings.TrimSpace(s)}
}

// itemsFromMap {"电话": "138..."} -> [{label: 电话, value: 138...}]
func itemsFromMap(m map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]interface{}{"label": k, "value": m[k]})
	}
	return out
}
