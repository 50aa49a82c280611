package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/locale"
)

type tagRequest struct {
	Name string `json:"name" binding:"required"`
}

type dropCategoryRequest struct {
	CategoryID string `json:"categoryId"`
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetTags 返回当前标签目录。
func (a *API) GetTags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tags":            a.directory.GetAll(),
		"loaded":          a.directory.Loaded(),
		"duplicateOrders": a.directory.DuplicateOrders(),
	})
}

// CreateTag 创建新标签
func (a *API) CreateTag(c *gin.Context) {
	lang := a.language(c)
	var req tagRequest
	if !bindJSON(c, &req, locale.Pick(lang, "tag name is required", "标签名称不能为空")) {
		return
	}

	result := a.tags.Create(c.Request.Context(), req.Name, lang)
	if !result.IsOK() {
		respondError(c, resultStatus(result), result.Reason)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message(lang), "tags": a.directory.GetAll()})
}

// RenameTag 修改标签名称
func (a *API) RenameTag(c *gin.Context) {
	lang := a.language(c)
	var req tagRequest
	if !bindJSON(c, &req, locale.Pick(lang, "tag name is required", "标签名称不能为空")) {
		return
	}

	outcome := a.tags.Rename(c.Request.Context(), c.Param("name"), req.Name, lang)
	if !outcome.Result.IsOK() {
		respondError(c, resultStatus(outcome.Result), outcome.Result.Reason)
		return
	}
	body := gin.H{
		"tag":           outcome.Tag,
		"droppedFields": outcome.DroppedFields,
		"tags":          a.directory.GetAll(),
	}
	if outcome.DroppedFields {
		body["warning"] = droppedFieldsMessage(lang)
	}
	c.JSON(http.StatusOK, body)
}

// DeleteTag 删除标签
func (a *API) DeleteTag(c *gin.Context) {
	name := c.Param("name")
	a.tags.Delete(c.Request.Context(), name)
	a.workspace(c).Deselect(name)
	c.JSON(http.StatusOK, gin.H{"tags": a.directory.GetAll()})
}

// GetCategories 返回全部分类及其标签。
func (a *API) GetCategories(c *gin.Context) {
	categories, err := a.board.Categories(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, locale.Pick(a.language(c), "failed to load categories", "获取分类失败"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// RenameCategory 修改分类名称
func (a *API) RenameCategory(c *gin.Context) {
	lang := a.language(c)
	var req categoryRequest
	if !bindJSON(c, &req, locale.Pick(lang, "category name is required", "分类名称不能为空")) {
		return
	}
	respondSync(c, a.board.RenameCategory(c.Request.Context(), c.Param("id"), req.Name, lang), lang)
}

// BeginDrag 记录拖动开始的标签。
func (a *API) BeginDrag(c *gin.Context) {
	var req tagRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}
	if !a.board.BeginDrag(a.workspace(c), req.Name) {
		respondError(c, http.StatusNotFound, locale.Pick(a.language(c), "tag not found", "标签不存在"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"dragging": req.Name})
}

// DropOnCategory 把拖动中的标签放入分类。
func (a *API) DropOnCategory(c *gin.Context) {
	var req dropCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondSync(c, a.board.DropOnCategory(c.Request.Context(), a.workspace(c), req.CategoryID), a.language(c))
}

// DropOnTag 与目标标签交换位置。
func (a *API) DropOnTag(c *gin.Context) {
	var req tagRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}
	sync, report := a.board.DropOnTag(c.Request.Context(), a.workspace(c), req.Name)
	body := gin.H{
		"tags":       sync.Tags,
		"categories": sync.Categories,
		"skipped":    sync.Skipped,
		"swap":       report,
	}
	if !sync.Result.IsOK() {
		body["error"] = sync.Result.Reason
	}
	c.JSON(resultStatus(sync.Result), body)
}

// RemoveFromCategory 把标签移出分类。
func (a *API) RemoveFromCategory(c *gin.Context) {
	respondSync(c, a.board.RemoveFromCategory(c.Request.Context(), c.Param("name")), a.language(c))
}
