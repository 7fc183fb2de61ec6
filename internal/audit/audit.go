// Package audit records who did what to a claim. Entries share the claim's
// DynamoDB partition so a claim's history is a single query.
package audit

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Action names recorded in the trail.
const (
	ActionSubmitted       = "CLAIM_SUBMITTED"
	ActionUpdated         = "CLAIM_UPDATED"
	ActionApproved        = "CLAIM_APPROVED"
	ActionRejected        = "CLAIM_REJECTED"
	ActionUpdateRequested = "UPDATE_REQUESTED"
	ActionPaid            = "PAYMENT_PROCESSED"
)

// Log writes audit entries. Recording is best-effort: a failed write is
// logged and dropped, because the claim transition it describes has already
// committed.
type Log struct {
	DB     *dynamodb.Client
	Table  string
	Logger *zap.Logger
}

// Record appends an audit entry for a claim action.
func (l *Log) Record(ctx context.Context, claimID, action, actorID, actorName, details string) {
	entryID := ulid.Make().String()
	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: "CLAIM#" + claimID},
		"SK":         &types.AttributeValueMemberS{Value: "AUDIT#" + entryID},
		"claim_id":   &types.AttributeValueMemberS{Value: claimID},
		"action":     &types.AttributeValueMemberS{Value: action},
		"actor_id":   &types.AttributeValueMemberS{Value: actorID},
		"actor_name": &types.AttributeValueMemberS{Value: actorName},
		"created_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	if details != "" {
		item["details"] = &types.AttributeValueMemberS{Value: details}
	}
	if _, err := l.DB.PutItem(ctx, &dynamodb.PutItemInput{TableName: &l.Table, Item: item}); err != nil {
		l.Logger.Warn("audit write failed",
			zap.String("claim_id", claimID),
			zap.String("action", action),
			zap.Error(err))
	}
}
