package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/controller"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/implementation"
	"portfolio-chat-be/internal/repository/memory"
	redisstore "portfolio-chat-be/internal/repository/redis"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/index"
	"portfolio-chat-be/pkg/llm/openrouter"
	"portfolio-chat-be/pkg/rag/response"
)

const analyticsTopic = "analytics.chat.recorded"

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	IndexController     controller.IIndexController
	AnalyticsController controller.IAnalyticsController
	DebugController     controller.IDebugController

	// Background Services (Exposed for main.go to run)
	RecorderService service.IRecorderService
	IndexService    service.IIndexService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding Provider based on Config
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	knowledgeIndex := index.New(embeddingProvider)

	// LLM client
	completer := openrouter.NewClient(
		cfg.Keys.OpenRouter,
		cfg.Ai.SiteURL,
		cfg.Ai.AppName,
		time.Duration(cfg.Ai.RequestTimeoutSec)*time.Second,
	)

	// Session Storage: Redis when configured, process memory otherwise
	var sessions contract.SessionStore
	if cfg.App.SessionBackend == "redis" {
		opt, err := goredis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &goredis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := goredis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessions = redisstore.NewSessionStore(rdb)
		log.Printf("[INFO] Using Session Backend: REDIS")
	} else {
		sessions = memory.NewSessionStore()
		log.Printf("[INFO] Using Session Backend: MEMORY")
	}

	generator := response.NewGenerator(
		completer,
		cfg.Ai.LLMModel,
		cfg.Ai.FallbackModels,
		sessions,
		sysLogger,
	)

	// Repositories
	analyticsRepo := implementation.NewAnalyticsRepository(db)

	// Services
	geoService := service.NewGeoService(sysLogger)
	recorderPublisher := service.NewRecorderPublisher(analyticsTopic, pubSub)
	recorderService := service.NewRecorderService(
		pubSub,
		analyticsTopic,
		analyticsRepo,
		geoService,
		cfg.Keys.AnalyticsSalt,
		sysLogger,
	)

	chatService := service.NewChatService(sessions, knowledgeIndex, generator, recorderPublisher, sysLogger)
	indexService := service.NewIndexService(knowledgeIndex, cfg.App.DataDir, sysLogger)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	debugService := service.NewDebugService(completer, cfg.Ai.LLMModel)

	return &Container{
		ChatController:      controller.NewChatController(chatService),
		IndexController:     controller.NewIndexController(indexService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService),
		DebugController:     controller.NewDebugController(debugService, geoService),
		RecorderService:     recorderService,
		IndexService:        indexService,
		Logger:              sysLogger,
	}
}
