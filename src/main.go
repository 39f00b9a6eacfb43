package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ewaste-server-go/src/configs"
	"ewaste-server-go/src/core/classifier"
	"ewaste-server-go/src/core/detect"
	"ewaste-server-go/src/core/image"
	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/utils"
	"ewaste-server-go/src/detection"
	httptransport "ewaste-server-go/src/transport/http"

	// 导入所有识别提供者以确保init函数被调用
	_ "ewaste-server-go/src/core/providers/recognizer/gemini"
	_ "ewaste-server-go/src/core/providers/recognizer/inference"
	_ "ewaste-server-go/src/core/providers/recognizer/manual"
	_ "ewaste-server-go/src/core/providers/recognizer/ollama"
	_ "ewaste-server-go/src/core/providers/recognizer/openai"

	"golang.org/x/sync/errgroup"
)

func LoadConfigAndLogger() (*configs.Config, *utils.Logger, error) {
	config, configPath, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	logger, err := utils.NewLogger(&config.Log)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("config loaded", utils.Fields{"path": configPath})

	return config, logger, nil
}

// BuildDetector creates the selected recognizer and wires the pipeline around it.
func BuildDetector(config *configs.Config, logger *utils.Logger) (*detect.Detector, error) {
	name, rc := config.SelectedRecognizer()
	provider, err := recognizer.Create(recognizer.ConfigFrom(name, rc), recognizer.Deps{Logger: logger})
	if err != nil {
		return nil, err
	}

	vocab := classifier.NewVocabulary(config.Detection.Keywords)
	logger.Info("keyword vocabulary ready", utils.Fields{"size": vocab.Size()})

	return detect.NewDetector(detect.Options{
		Validator:  image.NewValidator(config.Detection.MinImageBytes, config.Detection.MaxPixels),
		Processor:  image.NewImageProcessor(config.Detection.Image, logger),
		Provider:   provider,
		Classifier: classifier.New(vocab),
		Timeout:    config.DetectionTimeout(),
		Logger:     logger,
	}), nil
}

func StartHttpServer(config *configs.Config, logger *utils.Logger, detector *detect.Detector, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	router, err := httptransport.Build(httptransport.Options{
		Config:     config,
		Logger:     logger,
		StaticRoot: config.Web.StaticDir,
	})
	if err != nil {
		return nil, err
	}

	service, err := detection.NewDefaultDetectionService(config, detector, logger)
	if err != nil {
		return nil, err
	}
	if err := service.Start(groupCtx, router.Engine, router.API); err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("http server listening", utils.Fields{"addr": httpServer.Addr})

		go func() {
			<-groupCtx.Done()
			logger.Info("shutting down http server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown failed", utils.Fields{"error": err.Error()})
			} else {
				logger.Info("http server stopped")
			}
		}()

		// ErrServerClosed 表示正常关闭
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", utils.Fields{"error": err.Error()})
			return err
		}
		return nil
	})

	return httpServer, nil
}

func GracefulShutdown(cancel context.CancelFunc, logger *utils.Logger, g *errgroup.Group) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("signal received, shutting down", utils.Fields{"signal": sig.String()})
		cancel()
	case err := <-done:
		// server exited on its own
		return err
	}

	select {
	case err := <-done:
		return err
	case <-time.After(15 * time.Second):
		return fmt.Errorf("shutdown timed out")
	}
}

func main() {
	config, logger, err := LoadConfigAndLogger()
	if err != nil {
		fmt.Println("加载配置或初始化日志系统失败:", err)
		os.Exit(1)
	}
	defer logger.Close()

	detector, err := BuildDetector(config, logger)
	if err != nil {
		logger.Error("recognizer setup failed", utils.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer func() {
		if err := detector.Provider().Cleanup(); err != nil {
			logger.Warn("recognizer cleanup failed", utils.Fields{"error": err.Error()})
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, groupCtx := errgroup.WithContext(ctx)

	if _, err := StartHttpServer(config, logger, detector, g, groupCtx); err != nil {
		logger.Error("http server setup failed", utils.Fields{"error": err.Error()})
		cancel()
		os.Exit(1)
	}

	if err := GracefulShutdown(cancel, logger, g); err != nil {
		logger.Error("shutdown finished with error", utils.Fields{"error": err.Error()})
		return
	}
	logger.Info("server exited")
}
