package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/md-hub/md-hub/internal/binding"
	"github.com/md-hub/md-hub/internal/cache"
	"github.com/md-hub/md-hub/internal/config"
	"github.com/md-hub/md-hub/internal/docapi"
	"github.com/md-hub/md-hub/internal/gateway"
	"github.com/md-hub/md-hub/internal/logging"
	"github.com/md-hub/md-hub/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["api_base_url"] = cfg.Global.APIBaseURL
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动遵循“配置 → 日志 → 缓存 → 远端客户端 → 绑定 → 网关”顺序，
	// 绑定层与网关共享同一个 http.Client。
	store := cache.NewStore(cfg.Global.CacheCleanupInterval.DurationValue())

	httpClient := docapi.NewUpstreamClient(cfg)
	client, err := docapi.NewClient(cfg.Global.APIBaseURL, httpClient, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建远端客户端失败: %v\n", err)
		return 1
	}
	bindings := binding.New(client, store, binding.FromConfig(cfg.Global), logger)

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["api_base_url"] = cfg.Global.APIBaseURL
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, httpClient, bindings, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("md-hub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 MD_HUB_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("MD_HUB_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, httpClient *http.Client, bindings *binding.Bindings, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort

	forwarder, err := gateway.NewForwarder(cfg.Global.APIBaseURL, httpClient, logger)
	if err != nil {
		return err
	}

	app, err := gateway.NewApp(gateway.AppOptions{
		Logger:     logger,
		Forward:    forwarder,
		Global:     cfg.Global,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	gateway.RegisterDataRoutes(app, bindings)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
