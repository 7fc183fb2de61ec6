// Package app wires configuration, AWS clients, and the claim workflow for
// the Lambda entrypoints.
package app

import (
	"context"

	"github.com/agilehr/benefit-claims-portal/internal/audit"
	"github.com/agilehr/benefit-claims-portal/internal/awsutil"
	"github.com/agilehr/benefit-claims-portal/internal/balance"
	"github.com/agilehr/benefit-claims-portal/internal/config"
	"github.com/agilehr/benefit-claims-portal/internal/ddb"
	"github.com/agilehr/benefit-claims-portal/internal/notify"
	"github.com/agilehr/benefit-claims-portal/internal/workflow"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// App holds the application state shared by every handler.
type App struct {
	Env       config.Env
	Logger    *zap.Logger
	Repo      *ddb.Repo
	Service   *workflow.Service
	S3        *s3.Client
	Presigner *s3.PresignClient
}

// Bootstrap loads configuration and builds the full collaborator graph.
func Bootstrap(ctx context.Context) (*App, error) {
	env := config.MustLoad()
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	cfg, endpoint, err := awsutil.Load(ctx, env.Region)
	if err != nil {
		return nil, err
	}

	db := awsutil.NewDynamoDB(cfg, endpoint)
	repo := &ddb.Repo{DB: db, Table: env.Table}
	calc := &balance.Calculator{Claims: repo, Caps: repo}
	mailer := &notify.Mailer{Client: awsutil.NewSES(cfg, endpoint), Sender: env.SenderEmail, Logger: logger}
	trail := &audit.Log{DB: db, Table: env.Table, Logger: logger}
	s3c := awsutil.NewS3(cfg, endpoint)

	return &App{
		Env:       env,
		Logger:    logger,
		Repo:      repo,
		Service:   workflow.New(repo, repo, calc, repo, mailer, trail, logger),
		S3:        s3c,
		Presigner: s3.NewPresignClient(s3c),
	}, nil
}
