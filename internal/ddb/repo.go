// Package ddb provides the DynamoDB-backed claim repository, attachment
// store, and settings store.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Repo wraps a DynamoDB client and table name for claim operations.
type Repo struct {
	DB    *dynamodb.Client
	Table string
}

// awsStr is a helper to get a pointer to a string literal.
func awsStr(s string) *string { return &s }

// Insert stores a new claim, ensuring no duplicate exists.
func (r *Repo) Insert(ctx context.Context, c models.Claim) error {
	item, err := attributevalue.MarshalMap(toRecord(c))
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

// Get fetches a claim by id.
func (r *Repo) Get(ctx context.Context, id string) (models.Claim, error) {
	out, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: claimPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return models.Claim{}, apperr.Upstream("db error", err)
	}
	if out.Item == nil {
		return models.Claim{}, apperr.NotFound("claim not found")
	}
	var rec claimRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return models.Claim{}, apperr.Upstream("db error", err)
	}
	c, err := fromRecord(rec)
	if err != nil {
		return models.Claim{}, apperr.Upstream("db error", err)
	}
	return c, nil
}

// ListByEmployee returns an employee's claims, newest first.
func (r *Repo) ListByEmployee(ctx context.Context, employeeID string) ([]models.Claim, error) {
	return r.query(ctx, IndexEmployee, "GSI1PK", employeeGSI(employeeID), true)
}

// ListByStatus returns all claims in the given status, oldest update first,
// so reviewers work the queue in order.
func (r *Repo) ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error) {
	return r.query(ctx, IndexStatus, "GSI2PK", statusGSI(status), false)
}

func (r *Repo) query(ctx context.Context, index, keyAttr, keyValue string, descending bool) ([]models.Claim, error) {
	out, err := r.DB.Query(ctx, &dynamodb.QueryInput{
		TableName:              &r.Table,
		IndexName:              &index,
		KeyConditionExpression: awsStr("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: keyValue},
		},
		ScanIndexForward: boolPtr(!descending),
	})
	if err != nil {
		return nil, apperr.Upstream("db error", err)
	}
	claims := make([]models.Claim, 0, len(out.Items))
	for _, item := range out.Items {
		var rec claimRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, apperr.Upstream("db error", err)
		}
		c, err := fromRecord(rec)
		if err != nil {
			return nil, apperr.Upstream("db error", err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}

func boolPtr(b bool) *bool { return &b }

// Update applies a partial mutation to a claim and returns the new state.
// With ExpectStatus set the write is conditional on the current status;
// losing that race surfaces as a state conflict, which gives transitions
// at-most-one-writer-wins semantics without any in-process locking.
func (r *Repo) Update(ctx context.Context, id string, upd models.ClaimUpdate) (models.Claim, error) {
	sets := []string{"#updated = :updated", "GSI2SK = :updated"}
	names := map[string]string{"#updated": "updated_at"}
	values := map[string]types.AttributeValue{
		":updated": &types.AttributeValueMemberS{Value: upd.UpdatedAt.UTC().Format(time.RFC3339)},
	}

	set := func(expr, name, attr string, av types.AttributeValue) {
		sets = append(sets, expr)
		names[name] = attr
		values[strings.Replace(name, "#", ":", 1)] = av
	}
	if upd.Type != nil {
		set("#ctype = :ctype", "#ctype", "claim_type", &types.AttributeValueMemberS{Value: string(*upd.Type)})
	}
	if upd.Amount != nil {
		set("#amount = :amount", "#amount", "amount", &types.AttributeValueMemberS{Value: upd.Amount.String()})
	}
	if upd.Date != nil {
		set("#cdate = :cdate", "#cdate", "claim_date", &types.AttributeValueMemberS{Value: upd.Date.UTC().Format(dateLayout)})
	}
	if upd.Description != nil {
		set("#desc = :desc", "#desc", "description", &types.AttributeValueMemberS{Value: *upd.Description})
	}
	if upd.BillRef != nil {
		set("#bill = :bill", "#bill", "bill_ref", &types.AttributeValueMemberS{Value: *upd.BillRef})
	}
	if upd.PrescriptionRef != nil {
		set("#rx = :rx", "#rx", "prescription_ref", &types.AttributeValueMemberS{Value: *upd.PrescriptionRef})
	}
	if upd.HRComment != nil {
		set("#comment = :comment", "#comment", "hr_comment", &types.AttributeValueMemberS{Value: *upd.HRComment})
	}
	if upd.Status != nil {
		set("#status = :status", "#status", "claim_status", &types.AttributeValueMemberS{Value: string(*upd.Status)})
		sets = append(sets, "GSI2PK = :gsi2pk")
		values[":gsi2pk"] = &types.AttributeValueMemberS{Value: statusGSI(*upd.Status)}
	}

	cond := "attribute_exists(PK)"
	if len(upd.ExpectStatus) > 0 {
		placeholders := make([]string, len(upd.ExpectStatus))
		for i, st := range upd.ExpectStatus {
			ph := fmt.Sprintf(":expect%d", i)
			placeholders[i] = ph
			values[ph] = &types.AttributeValueMemberS{Value: string(st)}
		}
		names["#curstatus"] = "claim_status"
		cond += " AND #curstatus IN (" + strings.Join(placeholders, ", ") + ")"
	}

	out, err := r.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: claimPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		UpdateExpression:          awsStr("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       &cond,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return r.explainConditionFailure(ctx, id)
		}
		return models.Claim{}, apperr.Upstream("db error", err)
	}

	var rec claimRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return models.Claim{}, apperr.Upstream("db error", err)
	}
	c, err := fromRecord(rec)
	if err != nil {
		return models.Claim{}, apperr.Upstream("db error", err)
	}
	return c, nil
}

// explainConditionFailure distinguishes a missing claim from a status guard
// failure after a conditional update is rejected.
func (r *Repo) explainConditionFailure(ctx context.Context, id string) (models.Claim, error) {
	cur, err := r.Get(ctx, id)
	if err != nil {
		return models.Claim{}, err
	}
	return models.Claim{}, apperr.StateConflict("claim cannot be modified in status %s", cur.Status)
}
