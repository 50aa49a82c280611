package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/service"
)

// OpenEntry 打开结果列表中的条目进行编辑。
func (a *API) OpenEntry(c *gin.Context) {
	id, err := parseIntParam(c, "id")
	if err == nil {
		a.editor.Open(a.workspace(c), id)
	}
	redirectBack(c)
}

// SaveEntry 用表单字段更新草稿并保存，结果写入通知栏。
func (a *API) SaveEntry(c *gin.Context) {
	ws := a.workspace(c)
	a.editor.Update(ws, service.EntryInput{
		URL:         c.PostForm("url"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        service.ParseEntryTags(c.PostForm("tags")),
	})
	a.editor.Save(c.Request.Context(), ws, a.language(c))
	redirectBack(c)
}

// CloseEntry 关闭编辑器。
func (a *API) CloseEntry(c *gin.Context) {
	a.editor.Close(a.workspace(c))
	redirectBack(c)
}

// DeleteEntry 删除条目。
func (a *API) DeleteEntry(c *gin.Context) {
	id, err := parseIntParam(c, "id")
	if err == nil {
		a.editor.Delete(c.Request.Context(), a.workspace(c), id)
	}
	redirectBack(c)
}
