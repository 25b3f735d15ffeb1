package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FlexString 字符串叶子字段。模型经常把 GPA、年份之类写成数字或布尔值，
// 解码时统一转成字符串；null 视为空串。
type FlexString string

// UnmarshalJSON 接受 string / number / bool / null，数组和对象按文本拼接
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*f = FlexString(flattenText(raw))
	return nil
}

// String 返回字符串值
func (f FlexString) String() string {
	return string(f)
}

// flattenText 把任意 JSON 值压平成可读文本
func flattenText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(flattenText(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]interface{}:
		return flattenObject(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// 对象按常见字段顺序输出，其余字段跟在后面
var textFieldOrder = []string{"title", "subtitle", "label", "name", "period", "organization", "school", "role", "major", "degree", "summary", "detail", "value", "content", "description"}

func flattenObject(obj map[string]interface{}) string {
	used := make(map[string]bool, len(obj))
	parts := make([]string, 0, len(obj))
	for _, key := range textFieldOrder {
		if v, ok := obj[key]; ok {
			used[key] = true
			if s := strings.TrimSpace(flattenText(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	rest := make([]string, 0, len(obj))
	for key := range obj {
		if !used[key] && key != "id" {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if s := strings.TrimSpace(flattenText(obj[key])); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
