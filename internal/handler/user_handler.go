package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
	"github.com/tagboard/internal/service"
)

type userView struct {
	ID   string
	Name string
	Role string
}

func newUserViews(users []backend.User) []userView {
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, userView{ID: user.ID, Name: user.Name, Role: user.Role.String()})
	}
	return views
}

// ShowUsers 渲染用户管理页
func (a *API) ShowUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	listing := service.UserListing{Result: service.Ok(), Users: users}
	if err != nil {
		listing.Result = service.Failure(err.Error())
	}
	a.renderUsers(c, listing)
}

// CreateUser 处理新增用户表单
func (a *API) CreateUser(c *gin.Context) {
	lang := a.language(c)
	role, ok := backend.ParseRole(c.DefaultPostForm("role", "0"))
	if !ok {
		a.renderUsers(c, service.UserListing{Result: service.Failure(locale.Pick(lang, "unknown role", "未知的角色"))})
		return
	}
	listing := a.users.Create(c.Request.Context(), backend.NewUser{
		Name:     c.PostForm("name"),
		Password: c.PostForm("password"),
		Role:     role,
	}, lang)
	a.renderUsers(c, listing)
}

// DeleteUsers 并发删除勾选的用户
func (a *API) DeleteUsers(c *gin.Context) {
	listing := a.users.DeleteSelected(c.Request.Context(), trimmedValues(c.PostFormArray("ids")))
	a.renderUsers(c, listing)
}

func (a *API) renderUsers(c *gin.Context, listing service.UserListing) {
	lang := a.language(c)
	status := http.StatusOK
	data := gin.H{
		"title":  locale.Pick(lang, "Users", "用户管理"),
		"users":  newUserViews(listing.Users),
		"failed": listing.Failed,
		"roles": []userView{
			{ID: "0", Role: backend.RolePlayer.String()},
			{ID: "1", Role: backend.RoleManager.String()},
			{ID: "2", Role: backend.RoleAdmin.String()},
		},
	}
	if !listing.Result.IsOK() {
		status = resultStatus(listing.Result)
		data["notice"] = service.Notice{Message: listing.Result.Reason}
	}
	a.renderHTML(c, status, "users.html", data)
}
