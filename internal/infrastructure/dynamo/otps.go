package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-profile/internal/domain"
	"github.com/go-api-profile/internal/pkg/id"
	"github.com/go-api-profile/internal/pkg/otpcode"
)

// OTPRepo stores one item per email, so PutItem on Issue replaces any earlier code.
// expires_at is the table's TTL attribute; DynamoDB removes expired items lazily,
// so reads still check expiry themselves.
type OTPRepo struct {
	client    API
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

func NewOTPRepo(client API, tableName string, ttl time.Duration) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

func (r *OTPRepo) Issue(ctx context.Context, email string) (*domain.OTP, error) {
	code, err := otpcode.New()
	if err != nil {
		return nil, err
	}
	now := r.now().UTC()
	o := &domain.OTP{
		ID:        id.NewAt(now),
		Email:     normalizeEmail(email),
		Code:      code,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return nil, fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("put otp: %w", err)
	}
	return o, nil
}

func (r *OTPRepo) Verify(ctx context.Context, email, code string) (*domain.OTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, normalizeEmail(email)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get otp: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrInvalidOTP
	}
	var o domain.OTP
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	if o.Code != code || o.Expired(r.now()) {
		return nil, domain.ErrInvalidOTP
	}
	return &o, nil
}

// Consume deletes o unless it has already been replaced by a newer code.
func (r *OTPRepo) Consume(ctx context.Context, o *domain.OTP) error {
	if _, err := r.deleteIfCurrent(ctx, o.Email, o.ID); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// PurgeExpired scans for expired items that TTL hasn't removed yet and deletes them.
func (r *OTPRepo) PurgeExpired(ctx context.Context) (int64, error) {
	var purged int64
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(r.tableName),
			FilterExpression:         aws.String("#exp <= :now"),
			ProjectionExpression:     aws.String("#email, #id"),
			ExpressionAttributeNames: map[string]string{"#exp": attrExpiresAt, "#email": attrEmail, "#id": attrOTPID},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(r.now().Unix(), 10)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return purged, fmt.Errorf("scan otps: %w", err)
		}
		for _, item := range out.Items {
			var o domain.OTP
			if err := attributevalue.UnmarshalMap(item, &o); err != nil {
				return purged, fmt.Errorf("unmarshal otp: %w", err)
			}
			deleted, err := r.deleteIfCurrent(ctx, o.Email, o.ID)
			if err != nil {
				return purged, fmt.Errorf("delete otp: %w", err)
			}
			if deleted {
				purged++
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return purged, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *OTPRepo) deleteIfCurrent(ctx context.Context, email, otpID string) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrEmail, email),
		ConditionExpression:       aws.String("#id = :id"),
		ExpressionAttributeNames:  map[string]string{"#id": attrOTPID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":id": &types.AttributeValueMemberS{Value: otpID}},
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
