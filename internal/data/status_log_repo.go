package data

import (
	"context"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
)

// statusLogRepo 状态日志仓库实现
type statusLogRepo struct {
	data *Data
	log  *log.Helper
}

// NewStatusLogRepo 创建状态日志仓库
func NewStatusLogRepo(data *Data, logger log.Logger) biz.StatusLogRepo {
	return &statusLogRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// AddStatusLog 追加一条状态变更日志
func (r *statusLogRepo) AddStatusLog(ctx context.Context, entry *biz.StatusLog) error {
	m := &model.StatusLog{
		ServiceID:  entry.ServiceID,
		StatusCode: entry.StatusCode,
		Action:     entry.Action,
		Comment:    entry.Comment,
		CreatedAt:  entry.CreatedAt,
	}
	if err := r.data.session(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to add status log for service %d: %v", entry.ServiceID, err)
		return err
	}
	entry.StatusLogID = m.StatusLogID
	return nil
}
