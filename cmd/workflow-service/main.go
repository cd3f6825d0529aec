package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/VinoFleet/VinoFleet/internal/booking"
	"github.com/VinoFleet/VinoFleet/internal/common/config"
	"github.com/VinoFleet/VinoFleet/internal/common/db"
	"github.com/VinoFleet/VinoFleet/internal/common/logger"
	"github.com/VinoFleet/VinoFleet/internal/common/server"
	"github.com/VinoFleet/VinoFleet/internal/common/tracing"
	"github.com/VinoFleet/VinoFleet/internal/driver"
	"github.com/VinoFleet/VinoFleet/internal/timecard"
)

var (
	configPath  = flag.String("config", "configs/workflow-service.json", "配置文件路径")
	configKVKey = flag.String("config-kv", "", "从 Consul KV 读取配置的 key（优先于 -config）")
	consulAddr  = flag.String("consul", "localhost:8500", "Consul 地址（仅 -config-kv 时使用）")
)

func main() {
	flag.Parse()

	// 加载配置：集中配置（Consul KV）优先，否则读本地文件
	var cfg *config.Config
	var err error
	if *configKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulAddr, *configKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Driver, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&driver.Driver{},
		&timecard.TimeCard{},
		&timecard.Inspection{},
		&timecard.WeeklyHOS{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	svc, err := timecard.NewService(timecard.NewRepo(gormDB), log, cfg.Workflow)
	if err != nil {
		log.Fatalf("failed to init timecard service: %v", err)
	}

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(mux *http.ServeMux) error {
		driver.NewHandler(gormDB, cfg.Auth, log).Register(mux)
		timecard.NewHandler(svc, booking.NewRepo(gormDB), log).Register(mux)
		return nil
	}); err != nil {
		log.Fatalf("workflow-service exited with error: %v", err)
	}
}
