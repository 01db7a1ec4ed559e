package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Kotlang/summitGo/appconfig"
	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/dashboard"
	"github.com/Kotlang/summitGo/db"
	"github.com/Kotlang/summitGo/extensions"
	"github.com/Kotlang/summitGo/logger"
	s3client "github.com/Kotlang/summitGo/s3Client"
	"github.com/Kotlang/summitGo/server"
	"github.com/Kotlang/summitGo/service"
	"go.uber.org/zap"
)

type Inject struct {
	Config   *appconfig.AppConfig
	SummitDb *db.SummitDb
	Notifier extensions.NotifierInterface
	Issuer   *auth.SessionIssuer

	LeadService  *service.LeadService
	EventService *service.EventService
	Board        *dashboard.Board

	GrpcServer *server.GrpcServer
	HttpServer *server.HttpServer
}

func NewInject(config *appconfig.AppConfig) (*Inject, error) {
	inj := &Inject{Config: config}

	summitDb, err := db.ProvideSummitDb(config)
	if err != nil {
		return nil, err
	}
	inj.SummitDb = summitDb

	inj.Notifier = extensions.ProvideNotifier(config.AmqpURL, config.NotificationQueue)
	inj.Issuer = auth.NewSessionIssuer(config.AdminPassword, config.AccessSecret, config.SessionTTL)

	inj.LeadService = service.ProvideLeadService(inj.SummitDb, inj.Notifier)
	inj.EventService = service.ProvideEventService(inj.SummitDb, inj.Notifier)
	inj.Board = dashboard.NewBoard(inj.LeadService, inj.EventService)

	var presigner s3client.ImagePresignerInterface
	if config.ImageBucket != "" {
		p, err := s3client.NewImagePresigner(context.Background(), s3client.Config{
			Bucket:          config.ImageBucket,
			Region:          config.ImageRegion,
			Endpoint:        config.ImageEndpoint,
			AccessKeyId:     config.ImageAccessKeyId,
			SecretAccessKey: config.ImageSecretKey,
			PublicBaseURL:   config.ImagePublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up image uploads: %w", err)
		}
		presigner = p
	} else {
		logger.Info("IMAGE_BUCKET not set, image uploads disabled")
	}

	inj.GrpcServer = server.NewGrpcServer(config.GrpcPort, inj.Issuer, inj.SummitDb)
	handler, err := server.NewHandler(&server.Api{
		Leads:     inj.LeadService,
		Events:    inj.EventService,
		Board:     inj.Board,
		Issuer:    inj.Issuer,
		Presigner: presigner,
		Db:        inj.SummitDb,
	}, inj.GrpcServer.Server, config.AllowedOrigins)
	if err != nil {
		return nil, err
	}
	inj.HttpServer = server.NewHttpServer(config.HttpPort, handler)

	return inj, nil
}

// Close stops both servers and releases the store and broker connections.
func (inj *Inject) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := inj.HttpServer.Stop(ctx); err != nil {
		logger.Error("Failed stopping http server", zap.Error(err))
	}
	inj.GrpcServer.Stop()

	if closer, ok := inj.Notifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed closing notification client", zap.Error(err))
		}
	}
	if err := inj.SummitDb.Close(ctx); err != nil {
		logger.Error("Failed closing store", zap.Error(err))
	}
}
