package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/sorteo-api/docs"
	v1 "github.com/vietanh2810/sorteo-api/internal/api/handler/v1"
	"github.com/vietanh2810/sorteo-api/internal/api/middleware"
	"github.com/vietanh2810/sorteo-api/internal/config"
	"github.com/vietanh2810/sorteo-api/internal/importer"
	"github.com/vietanh2810/sorteo-api/internal/repository"
	"github.com/vietanh2810/sorteo-api/internal/repository/dao"
	"github.com/vietanh2810/sorteo-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	// Queue must be started before async imports are accepted.
	Queue    *importer.ChunkQueue
	Pipeline *importer.Pipeline
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	repo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))

	raffleHandler := s.initRaffleHandler(repo)
	participantHandler := s.initParticipantHandler(repo)
	s.MountHandlers(raffleHandler, participantHandler)

	return s
}

func (s *Server) initRaffleHandler(repo *repository.RaffleRepository) *v1.RaffleHandler {
	drawSvc := service.NewDrawService(repo, s.Config.Draw)
	resetSvc := service.NewResetService(repo)
	raffleSvc := service.NewRaffleService(repo)

	return v1.NewRaffleHandler(drawSvc, resetSvc, raffleSvc)
}

func (s *Server) initParticipantHandler(repo *repository.RaffleRepository) *v1.ParticipantHandler {
	processor := importer.NewChunkProcessor(repo, repo)
	s.Queue = importer.NewChunkQueue(processor, s.Config.Import.Workers)
	s.Pipeline = importer.NewPipeline(repo, repo, s.Queue, *s.Config.Import)

	return v1.NewParticipantHandler(s.Pipeline, s.Config.Import.MaxFileSize)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(raffleHandler *v1.RaffleHandler, participantHandler *v1.ParticipantHandler) {
	const basePath = "/api/v1"

	raffles := s.Router.Group(basePath + "/raffles")
	{
		raffles.GET("/active", raffleHandler.HandleGetActiveRaffle)
		raffles.POST("/draw", raffleHandler.HandleDrawActive)
		raffles.POST("/winners/reset", raffleHandler.HandleResetWinners)
		raffles.POST("/:raffleID/draw", raffleHandler.HandleDraw)
		raffles.POST("/:raffleID/activate", raffleHandler.HandleActivateRaffle)
	}

	participants := s.Router.Group(basePath + "/participants")
	{
		participants.POST("/import", participantHandler.HandleImport)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Sorteo API"
	docs.SwaggerInfo.Description = "Raffle draws, winner resets and participant imports."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
