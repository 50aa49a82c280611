package locale

import "fmt"

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

// TagExists 是创建重名标签时展示给用户的提示。
func TagExists(language, name string) string {
	return Pick(language, fmt.Sprintf("tag %s already exists", name), fmt.Sprintf("%s 标签已存在", name))
}

// Success 是保存成功后的通知文案。
func Success(language string) string {
	return Pick(language, "Success!", "成功！")
}

// SelectTagsFirst 在未选择任何标签就发起搜索时返回。
func SelectTagsFirst(language string) string {
	return Pick(language, "select tags to search first", "请选择要搜索的tag")
}

// Loading 是标签目录尚未加载完成时的占位文案。
func Loading(language string) string {
	return Pick(language, "Loading tags...", "加载中... tags")
}
