package main

import (
	"context"
	"flag"
	"os"
	"time"

	"grid-trading-engine/internal/config"
	"grid-trading-engine/internal/engine"
	"grid-trading-engine/internal/logger"
	"grid-trading-engine/internal/models"
	"grid-trading-engine/internal/reporter"
	"grid-trading-engine/internal/simulation"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// --- 命令行参数定义 ---
	configPath := flag.String("config", "config.json", "path to the engine config file")
	gridPath := flag.String("grid", "grid.json", "path to the grid configuration file")
	mode := flag.String("mode", "preview", "running mode: preview, validate, pressure or simulate")
	drawdown := flag.Float64("drawdown", 50, "max drawdown percent for pressure testing")
	days := flag.Int("days", 30, "number of days to simulate")
	volatility := flag.Float64("volatility", 2, "daily volatility percent for simulation")
	trend := flag.String("trend", "neutral", "price trend for simulation: up, down or neutral")
	strength := flag.Float64("strength", 10, "trend strength percent for simulation")
	seed := flag.Int64("seed", 0, "random seed for simulation (0 = default)")
	flag.Parse()

	// --- 初始化日志 (提前) ---
	// 加载配置前就可能需要记录日志，先用默认配置初始化一次
	logger.InitLogger(models.LogConfig{Level: "info", Output: "console"})

	// --- 加载 .env 文件 ---
	if err := godotenv.Load(); err != nil {
		logger.S().Info("未找到 .env 文件，将从系统环境变量中读取。")
	}

	// --- 加载 JSON 配置 ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.S().Fatalf("无法加载配置文件: %v", err)
	}

	// --- 使用文件中的配置重新初始化日志 ---
	logger.InitLogger(cfg.LogConfig)
	defer logger.S().Sync()

	gridConfig, err := config.LoadGridConfig(*gridPath)
	if err != nil {
		logger.S().Fatalf("无法加载网格配置: %v", err)
	}

	switch *mode {
	case "preview":
		runPreview(gridConfig)
	case "validate":
		runValidate(gridConfig)
	case "pressure":
		runPressure(gridConfig, *drawdown)
	case "simulate":
		runSimulate(gridConfig, models.SimulationParams{
			Days:           *days,
			Volatility:     decimal.NewFromFloat(*volatility),
			TrendDirection: models.TrendDirection(*trend),
			TrendStrength:  decimal.NewFromFloat(*strength),
			Seed:           *seed,
		})
	default:
		logger.S().Fatalf("未知的运行模式: %s", *mode)
	}
}

func runPreview(gridConfig *models.GridConfig) {
	preview := engine.PreviewConfig(gridConfig)
	reporter.PrintPreviewReport(os.Stdout, preview)
}

func runValidate(gridConfig *models.GridConfig) {
	result := engine.ValidateConfig(gridConfig)
	reporter.PrintValidationReport(os.Stdout, result)
	if !result.IsValid {
		os.Exit(1)
	}
}

func runPressure(gridConfig *models.GridConfig, drawdown float64) {
	result, err := engine.RunPressureTest(gridConfig, decimal.NewFromFloat(drawdown))
	if err != nil {
		logger.S().Fatalf("压力测试失败: %v", err)
	}
	reporter.PrintPressureReport(os.Stdout, result)
}

func runSimulate(gridConfig *models.GridConfig, params models.SimulationParams) {
	runner := simulation.NewRunner()
	runID, err := runner.Start(context.Background(), *gridConfig, params)
	if err != nil {
		logger.S().Fatalf("无法启动模拟: %v", err)
	}

	// 轮询等待模拟结束
	for {
		run, err := runner.Get(runID)
		if err != nil {
			logger.S().Fatalf("无法获取模拟结果: %v", err)
		}
		if run.Status != models.SimulationRunning {
			reporter.PrintSimulationReport(os.Stdout, run)
			if run.Status == models.SimulationFailed {
				os.Exit(1)
			}
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
