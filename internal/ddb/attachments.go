package ddb

import (
	"context"
	"strconv"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func attachmentPK(id string) string { return "ATT#" + id }

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

type attachmentRecord struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	ID          string `dynamodbav:"attachment_id"`
	EmployeeID  string `dynamodbav:"employee_id"`
	Kind        string `dynamodbav:"attachment_kind"`
	Filename    string `dynamodbav:"filename"`
	S3Key       string `dynamodbav:"s3_key"`
	ContentType string `dynamodbav:"content_type"`
	SizeBytes   int64  `dynamodbav:"size_bytes"`
	ETag        string `dynamodbav:"etag,omitempty"`
	Status      string `dynamodbav:"upload_status"`
	UploadedAt  string `dynamodbav:"uploaded_at,omitempty"`
}

// PutPendingAttachment inserts a new attachment record with status
// UPLOADING, ensuring no duplicate exists.
func (r *Repo) PutPendingAttachment(ctx context.Context, a models.Attachment) error {
	item, err := attributevalue.MarshalMap(attachmentRecord{
		PK:          attachmentPK(a.ID),
		SK:          skMeta,
		ID:          a.ID,
		EmployeeID:  a.EmployeeID,
		Kind:        string(a.Kind),
		Filename:    a.Filename,
		S3Key:       a.S3Key,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Status:      string(models.AttachmentUploading),
	})
	if err != nil {
		return apperr.Upstream("db error", err)
	}
	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.Table,
		Item:                item,
		ConditionExpression: awsStr("attribute_not_exists(PK)"),
	})
	if err != nil {
		return apperr.Upstream("db error", err)
	}
	return nil
}

// GetAttachment fetches an attachment by id.
func (r *Repo) GetAttachment(ctx context.Context, id string) (models.Attachment, error) {
	out, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: attachmentPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return models.Attachment{}, apperr.Upstream("db error", err)
	}
	if out.Item == nil {
		return models.Attachment{}, apperr.NotFound("attachment not found")
	}
	var rec attachmentRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return models.Attachment{}, apperr.Upstream("db error", err)
	}
	return models.Attachment{
		ID:          rec.ID,
		EmployeeID:  rec.EmployeeID,
		Kind:        models.AttachmentKind(rec.Kind),
		Filename:    rec.Filename,
		S3Key:       rec.S3Key,
		ContentType: rec.ContentType,
		SizeBytes:   rec.SizeBytes,
		ETag:        rec.ETag,
		Status:      models.AttachmentStatus(rec.Status),
		UploadedAt:  rec.UploadedAt,
	}, nil
}

// FinalizeAttachment marks an attachment COMPLETE or FAILED after the S3
// object lands, recording the observed size and etag.
func (r *Repo) FinalizeAttachment(ctx context.Context, id string, status models.AttachmentStatus, size int64, etag, uploadedAt string) error {
	_, err := r.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: attachmentPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		UpdateExpression:    awsStr("SET upload_status = :st, size_bytes = :size, etag = :etag, uploaded_at = :at"),
		ConditionExpression: awsStr("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":st":   &types.AttributeValueMemberS{Value: string(status)},
			":size": &types.AttributeValueMemberN{Value: formatInt(size)},
			":etag": &types.AttributeValueMemberS{Value: etag},
			":at":   &types.AttributeValueMemberS{Value: uploadedAt},
		},
	})
	if err != nil {
		return apperr.Upstream("db error", err)
	}
	return nil
}
