package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/product-return-agent/agent/agents/conversation"
	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	"github.com/tanpawarit/product-return-agent/agent/gateway/recommendation"
	"github.com/tanpawarit/product-return-agent/agent/gateway/validation"
	"github.com/tanpawarit/product-return-agent/agent/llm"
	"github.com/tanpawarit/product-return-agent/agent/marketplace"
	"github.com/tanpawarit/product-return-agent/agent/prompt"
	configx "github.com/tanpawarit/product-return-agent/pkg/config"
	logx "github.com/tanpawarit/product-return-agent/pkg/logger"
	_ "github.com/tanpawarit/product-return-agent/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/product-return-agent/pkg/openrouter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workflowID, err := gonanoid.New()
	if err != nil {
		log.Fatal().Err(err).Msg("generate workflow id")
	}
	logger := logx.ForWorkflow(workflowID)

	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")
	marketCfg := configx.MustNew[marketplace.Config]("MARKETPLACE")
	convCfg := configx.MustNew[conversation.Config]("CONVERSATION")
	prompts := prompt.LoadPromptSet()

	validationCfg := llmCfg.OpenRouterFor(contractx.GatewayTypeValidation)
	visionClient, err := openrouterx.NewClient(validationCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("init validation client")
	}
	validator, err := validation.New(visionClient, validationCfg.Model, prompts.Validate,
		validation.WithTimeout(validationCfg.Timeout),
		validation.WithTemperature(float64(validationCfg.Temperature)),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("init validation gateway")
	}

	recommendationCfg := llmCfg.OpenRouterFor(contractx.GatewayTypeRecommendation)
	chatModel, err := recommendationCfg.NewChatModel(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("init recommendation model")
	}
	recommender, err := recommendation.New(ctx, chatModel, prompts.Recommend, recommendationCfg.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("init recommendation gateway")
	}

	searcher, err := marketplace.NewClient(*marketCfg, marketplace.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("init marketplace client")
	}

	engine, err := conversation.New(validator, recommender, searcher, *convCfg, conversation.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("init conversation engine")
	}

	logger.Info().
		Str("validation_model", validationCfg.Model).
		Str("recommendation_model", recommendationCfg.Model).
		Str("marketplace_endpoint", marketCfg.Endpoint).
		Msg("product return agent ready")

	if err := runConsole(ctx, engine, os.Stdin, os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("console")
	}
}
