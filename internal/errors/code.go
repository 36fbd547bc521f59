package errors

import (
	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	i18nPkg "github.com/gaoyong06/go-pkg/middleware/i18n"
)

func init() {
	// 初始化全局错误管理器（使用项目特定的配置）
	pkgErrors.InitGlobalErrorManager("i18n", i18nPkg.Language)
}

// 会员服务错误码定义
// 错误码格式：SSMMEE (6位数字)，其中 SS=14 表示 membership-service
// 模块划分：
//   01: 套餐模块
//   02: 会员模块
//   03: 服务模块
//   04: 账单模块

// 套餐模块 (140100-140199)
const (
	// ErrCodePlanRequired 未指定套餐错误
	ErrCodePlanRequired = 140101
	// ErrCodePlanNotFound 套餐不存在错误
	ErrCodePlanNotFound = 140102
)

// 会员模块 (140200-140299)
const (
	// ErrCodeMembershipNotFound 会员不存在错误
	ErrCodeMembershipNotFound = 140201
)

// 服务模块 (140300-140399)
const (
	// ErrCodeServiceNotFound 服务不存在错误
	ErrCodeServiceNotFound = 140301
	// ErrCodeCannotCancelStatus 当前状态无法取消服务错误
	ErrCodeCannotCancelStatus = 140302
	// ErrCodeCannotResumeStatus 当前状态无法恢复服务错误
	ErrCodeCannotResumeStatus = 140303
	// ErrCodeServiceNotSchedulable 服务无计费计划表错误
	ErrCodeServiceNotSchedulable = 140304
)

// 账单模块 (140400-140499)
const (
	// ErrCodeInvoiceNotFound 账单不存在错误
	ErrCodeInvoiceNotFound = 140401
)
