package ddb

import (
	"context"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Cap setting keys and defaults. Defaults apply until HR writes a value, so
// a fresh stack behaves sensibly with an empty settings partition.
const (
	settingsPK    = "SETTINGS"
	annualCapSK   = "CAP#annual"
	quarterCapSK  = "CAP#quarter"
	settingsValue = "setting_value"
)

var (
	defaultAnnualCap  = decimal.NewFromInt(80000)
	defaultQuarterCap = decimal.NewFromInt(20000)
)

// Caps reads the annual and quarterly caps, falling back to defaults for
// missing keys. A cap update becomes visible on the next read; no
// transactional coupling with in-flight balance computations is needed.
func (r *Repo) Caps(ctx context.Context) (models.Caps, error) {
	annual, err := r.capValue(ctx, annualCapSK, defaultAnnualCap)
	if err != nil {
		return models.Caps{}, err
	}
	quarter, err := r.capValue(ctx, quarterCapSK, defaultQuarterCap)
	if err != nil {
		return models.Caps{}, err
	}
	return models.Caps{Annual: annual, Quarter: quarter}, nil
}

func (r *Repo) capValue(ctx context.Context, sk string, def decimal.Decimal) (decimal.Decimal, error) {
	out, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: settingsPK},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return decimal.Zero, apperr.Upstream("db error", err)
	}
	if out.Item == nil {
		return def, nil
	}
	raw, ok := out.Item[settingsValue].(*types.AttributeValueMemberS)
	if !ok {
		return def, nil
	}
	v, err := decimal.NewFromString(raw.Value)
	if err != nil {
		return def, nil
	}
	return v, nil
}

// SetQuarterCap stores a new quarterly cap.
func (r *Repo) SetQuarterCap(ctx context.Context, amount decimal.Decimal) error {
	return r.setCap(ctx, quarterCapSK, amount)
}

// SetAnnualCap stores a new annual cap.
func (r *Repo) SetAnnualCap(ctx context.Context, amount decimal.Decimal) error {
	return r.setCap(ctx, annualCapSK, amount)
}

func (r *Repo) setCap(ctx context.Context, sk string, amount decimal.Decimal) error {
	_, err := r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.Table,
		Item: map[string]types.AttributeValue{
			"PK":          &types.AttributeValueMemberS{Value: settingsPK},
			"SK":          &types.AttributeValueMemberS{Value: sk},
			settingsValue: &types.AttributeValueMemberS{Value: amount.String()},
		},
	})
	if err != nil {
		return apperr.Upstream("db error", err)
	}
	return nil
}
