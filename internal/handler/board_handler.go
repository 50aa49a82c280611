package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
	"github.com/tagboard/internal/service"
)

type tagView struct {
	Name     string
	Order    int
	Category string
	Selected bool
}

type categoryView struct {
	ID   string
	Name string
	Tags []tagView
}

func newTagViews(tags []backend.Tag, selected map[string]struct{}) []tagView {
	views := make([]tagView, 0, len(tags))
	for _, tag := range tags {
		_, isSelected := selected[tag.Name]
		views = append(views, tagView{Name: tag.Name, Order: tag.Order, Category: tag.CategoryID(), Selected: isSelected})
	}
	return views
}

func newCategoryViews(categories []backend.Category) []categoryView {
	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, categoryView{ID: category.ID, Name: category.Name, Tags: newTagViews(category.Tags, nil)})
	}
	return views
}

// ShowBoard 渲染主页面：标签列表、分类看板、搜索面板、结果与编辑器。
func (a *API) ShowBoard(c *gin.Context) {
	ctx := c.Request.Context()
	lang := a.language(c)
	ws := a.workspace(c)

	if !a.directory.Loaded() {
		if err := a.directory.Refresh(ctx); err != nil {
			c.Error(err)
		}
	}

	categories, err := a.board.Categories(ctx)
	if err != nil {
		c.Error(err)
	}

	selection := ws.Selection()
	selected := make(map[string]struct{}, len(selection))
	for _, name := range selection {
		selected[name] = struct{}{}
	}

	data := gin.H{
		"title":       locale.Pick(lang, "Tag board", "标签看板"),
		"loaded":      a.directory.Loaded(),
		"loadingText": locale.Loading(lang),
		"tags":        newTagViews(a.directory.GetAll(), selected),
		"categories":  newCategoryViews(categories),
		"selection":   selection,
		"canSearch":   len(selection) > 0,
		"results":     newEntryViews(ws.Results()),
		"draft":       newEntryView(ws.Draft()),
		"editorOpen":  ws.EditorOpen(),
	}
	if notice, ok := ws.TakeNotice(); ok {
		data["notice"] = notice
	}

	a.renderHTML(c, http.StatusOK, "index.html", data)
}

// CreateTagForm 处理新增标签表单。
func (a *API) CreateTagForm(c *gin.Context) {
	result := a.tags.Create(c.Request.Context(), c.PostForm("name"), a.language(c))
	a.noteFailure(c, result)
	redirectBack(c)
}

// DeleteTagForm 处理删除标签。
func (a *API) DeleteTagForm(c *gin.Context) {
	name := c.Param("name")
	a.tags.Delete(c.Request.Context(), name)
	a.workspace(c).Deselect(name)
	redirectBack(c)
}

// RenameTagForm 处理标签改名。
func (a *API) RenameTagForm(c *gin.Context) {
	lang := a.language(c)
	oldName := c.Param("name")
	outcome := a.tags.Rename(c.Request.Context(), oldName, c.PostForm("name"), lang)
	if !outcome.Result.IsOK() {
		a.noteFailure(c, outcome.Result)
		redirectBack(c)
		return
	}

	ws := a.workspace(c)
	// 改名后刷新失败时 outcome.Tag 为空，只移除旧名
	for _, selected := range ws.Selection() {
		if selected != oldName {
			continue
		}
		ws.Deselect(oldName)
		if outcome.Tag.Name != "" {
			ws.Select(outcome.Tag.Name)
		}
	}
	if outcome.DroppedFields {
		ws.SetNotice(service.Notice{Message: droppedFieldsMessage(lang)})
	}
	redirectBack(c)
}

// SelectTag 把标签加入搜索选择，只接受目录中存在的标签。
func (a *API) SelectTag(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if _, ok := a.directory.Lookup(name); ok {
		a.workspace(c).Select(name)
	}
	redirectBack(c)
}

// DeselectTag 从搜索选择中移除标签。
func (a *API) DeselectTag(c *gin.Context) {
	a.workspace(c).Deselect(strings.TrimSpace(c.PostForm("name")))
	redirectBack(c)
}

// SearchForm 以表单勾选的标签替换选择后发起搜索；全部取消勾选即清空选择。
func (a *API) SearchForm(c *gin.Context) {
	ws := a.workspace(c)
	ws.SetSelection(trimmedValues(c.PostFormArray("tags")))
	result := a.search.Search(c.Request.Context(), ws, a.language(c))
	a.noteFailure(c, result)
	redirectBack(c)
}

// RenameCategoryForm 处理分类改名。
func (a *API) RenameCategoryForm(c *gin.Context) {
	sync := a.board.RenameCategory(c.Request.Context(), c.Param("id"), c.PostForm("name"), a.language(c))
	a.noteFailure(c, sync.Result)
	redirectBack(c)
}

// noteFailure 把失败的结果放入通知栏，成功时不打扰用户。
func (a *API) noteFailure(c *gin.Context, result service.Result) {
	if result.IsOK() {
		return
	}
	a.workspace(c).SetNotice(service.Notice{Message: result.Reason})
}

func droppedFieldsMessage(lang string) string {
	return locale.Pick(lang, "Tag renamed, but the backend did not keep its order or category.", "标签已改名，但后端没有保留原有的排序或分类。")
}
