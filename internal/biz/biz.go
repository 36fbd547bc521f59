package biz

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewClock,
	NewServiceInitializer,
	NewMembershipUsecase,
)

// Transaction 事务执行接口，由 data 层实现
// 顶层生命周期操作在一个事务内完成，要么全部生效要么全部回滚
type Transaction interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}
