package service

import (
	"github.com/sirupsen/logrus"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/locale"
)

// ResultKind 区分一次用户操作的结局。
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultConflict
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultConflict:
		return "conflict"
	default:
		return "failure"
	}
}

// Result 是写操作返回给界面的结果，Reason 已经是可以直接展示的文案。
type Result struct {
	Kind   ResultKind
	Reason string
}

func Ok() Result { return Result{Kind: ResultOK} }

func Conflict(reason string) Result { return Result{Kind: ResultConflict, Reason: reason} }

func Failure(reason string) Result { return Result{Kind: ResultFailure, Reason: reason} }

func (r Result) IsOK() bool { return r.Kind == ResultOK }

// Message 返回用于通知栏的文本，成功时使用本地化的成功提示。
func (r Result) Message(lang string) string {
	if r.IsOK() {
		return locale.Success(lang)
	}
	return r.Reason
}

// Sync 是写后重新拉取得到的数据快照。
// Skipped 表示操作被前置条件拦下，没有发出任何远程调用。
type Sync struct {
	Result     Result
	Tags       []backend.Tag
	Categories []backend.Category
	Skipped    bool
}

func loggerOrDefault(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
