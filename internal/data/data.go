package data

import (
	"context"
	"time"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/conf"
	"xinyuan_tech/membership-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewDB,
	NewRedis,
	NewRedsync,
	NewMembershipLocker,
	NewMembershipRepo,
	NewServiceRepo,
	NewPlanRepo,
	NewScheduleAdjustmentRepo,
	NewStatusLogRepo,
	NewInvoiceManager,
	wire.Bind(new(biz.Transaction), new(*Data)),
)

// Data .
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
}

type contextTxKey struct{}

// Exec 执行事务
// 顶层操作用它包住，保证生命周期变更对外原子生效
func (d *Data) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, contextTxKey{}, tx)
		return fn(ctx)
	})
}

// session 优先取事务中的连接
func (d *Data) session(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// NewData .
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
	}
	return &Data{db: db, rdb: rdb}, cleanup, nil
}

// NewDB .
func NewDB(c *conf.Bootstrap) *gorm.DB {
	source := ""
	if c != nil && c.Data != nil {
		source = c.Data.Database.Source
	}
	if source == "" {
		panic("database source is required")
	}

	db, err := gorm.Open(mysql.Open(source), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}

	if c != nil && c.Data != nil {
		dbConf := c.Data.Database
		if dbConf.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dbConf.MaxIdleConns)
		}
		if dbConf.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dbConf.MaxOpenConns)
		}
		if dbConf.ConnMaxLifetime != "" {
			if lifetime, err := time.ParseDuration(dbConf.ConnMaxLifetime); err == nil {
				sqlDB.SetConnMaxLifetime(lifetime)
			}
		}
	}
	return db
}

// NewRedis .
func NewRedis(c *conf.Bootstrap) *redis.Client {
	var readTimeout, writeTimeout, dialTimeout time.Duration
	var addr, password string
	var db, poolSize, minIdleConns int32

	if c != nil && c.Data != nil {
		redisConf := c.Data.Redis
		if redisConf.ReadTimeout != "" {
			readTimeout, _ = time.ParseDuration(redisConf.ReadTimeout)
		}
		if redisConf.WriteTimeout != "" {
			writeTimeout, _ = time.ParseDuration(redisConf.WriteTimeout)
		}
		if redisConf.DialTimeout != "" {
			dialTimeout, _ = time.ParseDuration(redisConf.DialTimeout)
		}
		addr = redisConf.Addr
		password = redisConf.Password
		db = redisConf.Db
		poolSize = redisConf.PoolSize
		minIdleConns = redisConf.MinIdleConns
	}

	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           int(db),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		DialTimeout:  dialTimeout,
		PoolSize:     int(poolSize),
		MinIdleConns: int(minIdleConns),
	})
	return rdb
}

// NewRedsync 创建 redsync 实例
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	pool := goredis.NewPool(rdb)
	return redsync.New(pool)
}

// membershipLocker 基于 redis 分布式锁的会员粒度互斥
type membershipLocker struct {
	rs *redsync.Redsync
}

// NewMembershipLocker 创建会员锁提供者
func NewMembershipLocker(rs *redsync.Redsync) biz.MembershipLocker {
	return &membershipLocker{rs: rs}
}

func (l *membershipLocker) NewMutex(name string) biz.LifecycleMutex {
	return l.rs.NewMutex(
		name,
		redsync.WithExpiry(constants.LifecycleLockExpiration),
		redsync.WithTries(constants.LifecycleLockRetries), // 只尝试一次,如果失败说明正在处理
	)
}
