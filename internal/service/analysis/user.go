package analysis

import (
	"context"

	"github.com/google/uuid"
)

// UserIDSource 获取当前用户标识
type UserIDSource interface {
	UserID(ctx context.Context) any
}

// StaticUserID 固定的用户标识
type StaticUserID struct {
	ID any
}

func (s StaticUserID) UserID(context.Context) any { return s.ID }

// AnonymousUserID 随机生成、在值的生命周期内不变的匿名标识
type AnonymousUserID struct {
	id string
}

// NewAnonymousUserID 生成新的匿名标识
func NewAnonymousUserID() AnonymousUserID {
	return AnonymousUserID{id: uuid.NewString()}
}

func (a AnonymousUserID) UserID(context.Context) any { return a.id }
