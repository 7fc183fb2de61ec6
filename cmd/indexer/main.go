// Package main finalizes attachment uploads after the S3 PUT lands, marking
// the record COMPLETE or FAILED.
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/agilehr/benefit-claims-portal/internal/app"
	"github.com/agilehr/benefit-claims-portal/internal/attach"
	"github.com/agilehr/benefit-claims-portal/internal/ddb"
	"github.com/agilehr/benefit-claims-portal/internal/models"
	"github.com/agilehr/benefit-claims-portal/internal/validate"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

func main() {
	a, err := app.Bootstrap(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	lambda.Start(func(ctx context.Context, ev events.S3Event) (any, error) {
		for _, rec := range ev.Records {
			if err := processRecord(ctx, a, rec); err != nil {
				a.Logger.Error("indexer: process failed", zap.Error(err))
			}
		}
		return nil, nil
	})
}

// processRecord handles a single S3 event record. The presign handler only
// signs keys it created, but the bucket is still re-checked here: an object
// that turns out oversized or mistyped flips the attachment to FAILED so
// submissions can never reference it.
func processRecord(ctx context.Context, a *app.App, record events.S3EventRecord) error {
	bucket := record.S3.Bucket.Name
	key, _ := url.QueryUnescape(record.S3.Object.Key)

	meta, err := headObject(ctx, a, bucket, key)
	if err != nil {
		return fmt.Errorf("head %s: %w", key, err)
	}

	attachmentID := strings.TrimSpace(meta.userMeta["attachment_id"])
	if attachmentID == "" {
		_, parsed, ok := attach.ParseKey(key)
		if !ok {
			return fmt.Errorf("bad key %q", key)
		}
		attachmentID = parsed
	}

	status := models.AttachmentComplete
	if err := validate.SizeOK(meta.size); err != nil {
		a.Logger.Warn("indexer: rejecting upload", zap.String("key", key), zap.Error(err))
		status = models.AttachmentFailed
	} else if err := validate.ContentType(meta.contentType); err != nil {
		a.Logger.Warn("indexer: rejecting upload", zap.String("key", key), zap.Error(err))
		status = models.AttachmentFailed
	}

	if err := a.Repo.FinalizeAttachment(ctx, attachmentID, status, meta.size, meta.etag, ddb.NowISO()); err != nil {
		return fmt.Errorf("finalize %s: %w", attachmentID, err)
	}

	a.Logger.Info("indexer: finalized",
		zap.String("attachment_id", attachmentID),
		zap.String("status", string(status)),
		zap.Int64("size", meta.size))
	return nil
}

// objectMeta holds S3 object metadata and user-defined metadata.
type objectMeta struct {
	size        int64
	etag        string
	contentType string
	userMeta    map[string]string // lowercased keys
}

func headObject(ctx context.Context, a *app.App, bucket, key string) (*objectMeta, error) {
	ho, err := a.S3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	m := &objectMeta{userMeta: make(map[string]string, len(ho.Metadata))}
	if ho.ContentLength != nil {
		m.size = *ho.ContentLength
	}
	if ho.ETag != nil {
		m.etag = strings.Trim(*ho.ETag, "\"")
	}
	if ho.ContentType != nil {
		m.contentType = strings.ToLower(*ho.ContentType)
	}
	for k, v := range ho.Metadata {
		m.userMeta[strings.ToLower(k)] = v
	}
	return m, nil
}
