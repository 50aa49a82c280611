package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tagboard/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseIntParam(c *gin.Context, key string) (int, error) {
	raw := c.Param(key)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

func trimmedValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func resultStatus(result service.Result) int {
	switch result.Kind {
	case service.ResultOK:
		return http.StatusOK
	case service.ResultConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondSync 把写后刷新的快照返回给拖放脚本。
func respondSync(c *gin.Context, sync service.Sync, lang string) {
	body := gin.H{
		"tags":       sync.Tags,
		"categories": sync.Categories,
		"skipped":    sync.Skipped,
	}
	if !sync.Result.IsOK() {
		body["error"] = sync.Result.Reason
	} else if !sync.Skipped {
		body["message"] = sync.Result.Message(lang)
	}
	c.JSON(resultStatus(sync.Result), body)
}

// redirectBack 在表单提交后跳回看板，遵循 POST/redirect/GET。
func redirectBack(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
