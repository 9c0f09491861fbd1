package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"job-advisor/internal/domain"
)

const (
	chatKind         = "CHAT#"
	historyRetention = 30 * 24 * time.Hour
)

// dynamoTable is the slice of the DynamoDB API the history store uses.
type dynamoTable interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client stores question/answer exchanges per conversation owner. Items
// expire through the table's ttl attribute.
type Client struct {
	table dynamoTable
	name  string
	now   func() time.Time
}

func New(table dynamoTable, name string) (*Client, error) {
	if table == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{table: table, name: name, now: time.Now}, nil
}

// ownerPK returns the partition key for a conversation owner. A user id takes
// precedence over a session id; "" means neither is known.
func ownerPK(sessionID, userID string) string {
	if userID = strings.TrimSpace(userID); userID != "" {
		return "USER#" + userID
	}
	if sessionID = strings.TrimSpace(sessionID); sessionID != "" {
		return "SESSION#" + sessionID
	}
	return ""
}

// GetRecent returns the turns of the last limit exchanges, oldest first.
func (c *Client) GetRecent(ctx context.Context, sessionID, userID string, limit int) ([]domain.Turn, error) {
	pk := ownerPK(sessionID, userID)
	if pk == "" || limit <= 0 {
		return nil, nil
	}

	out, err := c.table.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.name),
		KeyConditionExpression: aws.String("#pk = :owner AND begins_with(#sk, :kind)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "PK",
			"#sk": "SK",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: pk},
			":kind":  &types.AttributeValueMemberS{Value: chatKind},
		},
		// Newest first, so the limit keeps the latest exchanges.
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecent query: %w", err)
	}

	turns := make([]domain.Turn, 0, 2*len(out.Items))
	for i := len(out.Items) - 1; i >= 0; i-- {
		question, answer, err := decodeExchange(out.Items[i])
		if err != nil {
			return nil, fmt.Errorf("repository: GetRecent: %w", err)
		}
		if question != "" {
			turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: question})
		}
		if answer != "" {
			turns = append(turns, domain.Turn{Role: domain.RoleAssistant, Content: answer})
		}
	}
	return turns, nil
}

// decodeExchange reads the trimmed question and answer of one item. The sort
// key must be a string; message and response may be missing.
func decodeExchange(item map[string]types.AttributeValue) (string, string, error) {
	sk, ok := item["SK"]
	if !ok {
		return "", "", errors.New("item without SK")
	}
	if _, ok := sk.(*types.AttributeValueMemberS); !ok {
		return "", "", fmt.Errorf("SK is not a string (%T)", sk)
	}
	return optionalString(item, "message"), optionalString(item, "response"), nil
}

func optionalString(item map[string]types.AttributeValue, key string) string {
	if s, ok := item[key].(*types.AttributeValueMemberS); ok {
		return strings.TrimSpace(s.Value)
	}
	return ""
}

// NewChatRecord builds a record for the owner, keyed by the current time.
func (c *Client) NewChatRecord(sessionID, userID, category, message, response string, source domain.Source) domain.ChatRecord {
	at := c.now().UTC()
	return domain.ChatRecord{
		PK:        ownerPK(sessionID, userID),
		SK:        chatKind + at.Format(time.RFC3339Nano),
		SessionID: strings.TrimSpace(sessionID),
		UserID:    strings.TrimSpace(userID),
		Category:  category,
		Message:   message,
		Response:  response,
		Source:    source,
		TTL:       at.Add(historyRetention).Unix(),
	}
}

// SaveChat writes one exchange and never overwrites an existing one.
func (c *Client) SaveChat(ctx context.Context, rec domain.ChatRecord) error {
	if rec.PK == "" || rec.SK == "" {
		return errors.New("repository: SaveChat: PK and SK are required")
	}

	item := map[string]types.AttributeValue{
		"PK":       &types.AttributeValueMemberS{Value: rec.PK},
		"SK":       &types.AttributeValueMemberS{Value: rec.SK},
		"category": &types.AttributeValueMemberS{Value: rec.Category},
		"message":  &types.AttributeValueMemberS{Value: rec.Message},
		"response": &types.AttributeValueMemberS{Value: rec.Response},
		"source":   &types.AttributeValueMemberS{Value: string(rec.Source)},
		"ttl":      &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.TTL, 10)},
	}
	if rec.SessionID != "" {
		item["sessionId"] = &types.AttributeValueMemberS{Value: rec.SessionID}
	}
	if rec.UserID != "" {
		item["userId"] = &types.AttributeValueMemberS{Value: rec.UserID}
	}

	if _, err := c.table.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.name),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	}); err != nil {
		return fmt.Errorf("repository: SaveChat: %w", err)
	}
	return nil
}
