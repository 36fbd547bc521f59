package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/conf"

	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

// CronApp Cron 应用结构
type CronApp struct {
	membershipUsecase *biz.MembershipUsecase
}

func init() {
	flag.StringVar(&flagconf, "conf", conf.DefaultPath, "config path, eg: -conf config.yaml")
}

func newLogger() klog.Logger {
	return klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"caller", klog.DefaultCaller,
		"service.name", "membership-cron",
	)
}

func main() {
	flag.Parse()

	// 初始化配置
	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}

	// 初始化应用
	app, cleanup, err := wireApp(bc, newLogger())
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 1. 延迟生效处理 - 每 5 分钟执行
	// 到期切换的新服务在旧服务走完周期后由这里接管激活
	_, err = cronScheduler.AddFunc("0 */5 * * * *", func() {
		log.Println("[CRON] Starting delayed activation process...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		activated, results, err := app.membershipUsecase.ProcessDelayedActivations(ctx)
		if err != nil {
			log.Printf("[CRON] Error processing delayed activations: %v", err)
			return
		}
		log.Printf("[CRON] Delayed activation completed: total=%d, activated=%d", len(results), activated)
	})
	if err != nil {
		log.Printf("Failed to add delayed activation job: %v", err)
	}

	// 2. 续费处理 - 每天凌晨 2 点执行
	_, err = cronScheduler.AddFunc("0 0 2 * * *", func() {
		log.Println("[CRON] Starting renewal process...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		totalCount, successCount, failedCount, results, err := app.membershipUsecase.ProcessRenewals(ctx, bc.Subscription.RenewalDryRun)
		if err != nil {
			log.Printf("[CRON] Error processing renewals: %v", err)
			return
		}
		log.Printf("[CRON] Renewal completed: total=%d, success=%d, failed=%d", totalCount, successCount, failedCount)

		// 记录失败明细
		for _, result := range results {
			if !result.Success {
				log.Printf("[CRON] Renewal failed: service=%d, membership=%d, error=%s",
					result.ServiceID, result.MembershipID, result.ErrorMessage)
			}
		}
	})
	if err != nil {
		log.Printf("Failed to add renewal job: %v", err)
	}

	// 3. 过期处理 - 每天凌晨 3 点执行
	_, err = cronScheduler.AddFunc("0 0 3 * * *", func() {
		log.Println("[CRON] Starting expiration process...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		expired, err := app.membershipUsecase.ProcessExpirations(ctx)
		if err != nil {
			log.Printf("[CRON] Error processing expirations: %v", err)
			return
		}
		log.Printf("[CRON] Expiration completed: expired=%d", expired)
	})
	if err != nil {
		log.Printf("Failed to add expiration job: %v", err)
	}

	// 启动定时任务
	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Delayed activation: Every 5 minutes")
	log.Println("  - Renewal process:    Every day at 02:00")
	log.Println("  - Expiration process: Every day at 03:00")
	log.Println("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
