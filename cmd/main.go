package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"shop-support-agent/handler"
	"shop-support-agent/internal/config"
	"shop-support-agent/internal/gateway"
	"shop-support-agent/internal/integrations/gemini"
	"shop-support-agent/internal/integrations/openai"
	"shop-support-agent/internal/integrations/paramstore"
	"shop-support-agent/internal/knowledge"
	"shop-support-agent/internal/logging"
	"shop-support-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Debug))

	// ---- AWS SDK config (only when an AWS integration is configured) ----
	var awsCfg *aws.Config
	if cfg.NeedsAWS() {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Warn("failed to load AWS config, AWS integrations disabled", "err", err)
		} else {
			awsCfg = &loaded
		}
	}

	// ---- Credential ----
	apiKey := resolveAPIKey(ctx, cfg, awsCfg)
	if apiKey == "" {
		slog.Warn("LLM credential is not set, every chat will return the fallback reply", "env", cfg.APIKeyEnv())
	}

	// ---- Knowledge ----
	kb := knowledge.Load(ctx, knowledgeSource(cfg, awsCfg))

	// ---- Clients ----
	gw, err := gateway.New(newProvider(cfg, apiKey), gateway.WithTimeout(cfg.LLMTimeout))
	if err != nil {
		slog.Error("failed to create gateway", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(gw, kb, usecase.ShopProfile{
		Name:     cfg.ShopName,
		URL:      cfg.ShopURL,
		Location: cfg.ShopLocation,
	})
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService, handler.WithMaxBodyBytes(cfg.MaxBodyBytes))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if cfg.RunMode == config.RunModeLambda {
		lambda.Start(h.Handle)
		return
	}
	serve(cfg, h)
}

// resolveAPIKey prefers the environment and falls back to SSM when
// API_KEY_PARAM is set.
func resolveAPIKey(ctx context.Context, cfg config.Config, awsCfg *aws.Config) string {
	if key := cfg.APIKey(); key != "" || cfg.APIKeyParam == "" {
		return key
	}
	if awsCfg == nil {
		return ""
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(*awsCfg))
	if err != nil {
		slog.Warn("failed to create SSM client", "err", err)
		return ""
	}
	key, err := paramstore.ResolveToken(ctx, ssmClient, cfg.APIKeyParam)
	if err != nil {
		slog.Warn("failed to resolve LLM credential from parameter store", "param", cfg.APIKeyParam, "err", err)
		return ""
	}
	return key
}

func knowledgeSource(cfg config.Config, awsCfg *aws.Config) knowledge.Source {
	if cfg.KnowledgeTable != "" && awsCfg != nil {
		src, err := knowledge.NewDynamoSource(awsdynamodb.NewFromConfig(*awsCfg), cfg.KnowledgeTable)
		if err == nil {
			return src
		}
		slog.Warn("failed to create knowledge table source, using file", "table", cfg.KnowledgeTable, "err", err)
	}
	return knowledge.NewFileSource(cfg.KnowledgeFile)
}

func newProvider(cfg config.Config, apiKey string) gateway.Provider {
	if cfg.LLMProvider == config.ProviderOpenAI {
		var opts []openai.Option
		if cfg.LLMBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLMBaseURL))
		}
		return openai.NewClient(apiKey, cfg.LLMModel, opts...)
	}

	var opts []gemini.Option
	if cfg.LLMBaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.LLMBaseURL))
	}
	return gemini.NewClient(apiKey, cfg.LLMModel, opts...)
}

func serve(cfg config.Config, h *handler.Handler) {
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(cfg.Debug),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "err", err)
		}
	}()

	slog.Info("server listening", "port", cfg.Port, "debug", cfg.Debug)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("could not listen", "port", cfg.Port, "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
