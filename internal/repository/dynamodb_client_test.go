package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"job-advisor/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	queryOut     *dynamodb.QueryOutput
	queryErr     error
	lastPutInput *dynamodb.PutItemInput
	lastQueryIn  *dynamodb.QueryInput
	queries      int
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries++
	f.lastQueryIn = in
	return f.queryOut, f.queryErr
}

func makeItem(pk, sk, message, response string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":       &types.AttributeValueMemberS{Value: pk},
		"SK":       &types.AttributeValueMemberS{Value: sk},
		"message":  &types.AttributeValueMemberS{Value: message},
		"response": &types.AttributeValueMemberS{Value: response},
	}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "t")
	require.ErrorContains(t, err, "must not be nil")
	_, err = New(&fakeDynamo{}, " ")
	require.ErrorContains(t, err, "table name")
}

func TestOwnerPK(t *testing.T) {
	require.Equal(t, "USER#42", ownerPK("s1", "42"))
	require.Equal(t, "SESSION#s1", ownerPK("s1", " "))
	require.Equal(t, "", ownerPK("", ""))
}

func TestGetRecent_NoOwner(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	turns, err := c.GetRecent(context.Background(), "", "", 5)
	require.NoError(t, err)
	require.Empty(t, turns)
	require.Zero(t, db.queries)
}

func TestGetRecent_ChronologicalTurns(t *testing.T) {
	db := &fakeDynamo{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				makeItem("SESSION#s1", "CHAT#2026-02-27T12:00:00Z", "سوال دوم", "پاسخ دوم"),
				makeItem("SESSION#s1", "CHAT#2026-02-27T11:00:00Z", "سوال اول", ""),
			},
		},
	}
	c := mustNewClient(t, db)
	turns, err := c.GetRecent(context.Background(), "s1", "", 5)
	require.NoError(t, err)
	require.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Content: "سوال اول"},
		{Role: domain.RoleUser, Content: "سوال دوم"},
		{Role: domain.RoleAssistant, Content: "پاسخ دوم"},
	}, turns)
}

func TestGetRecent_KeyConditionExpression(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	c := mustNewClient(t, db)
	_, err := c.GetRecent(context.Background(), "s1", "7", 5)
	require.NoError(t, err)
	require.Equal(t, "#pk = :owner AND begins_with(#sk, :kind)", *db.lastQueryIn.KeyConditionExpression)
	require.Equal(t, map[string]string{"#pk": "PK", "#sk": "SK"}, db.lastQueryIn.ExpressionAttributeNames)
	require.Equal(t, "USER#7", db.lastQueryIn.ExpressionAttributeValues[":owner"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "CHAT#", db.lastQueryIn.ExpressionAttributeValues[":kind"].(*types.AttributeValueMemberS).Value)
	require.False(t, *db.lastQueryIn.ScanIndexForward)
	require.Equal(t, int32(5), *db.lastQueryIn.Limit)
}

func TestGetRecent_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)
	_, err := c.GetRecent(context.Background(), "s1", "", 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetRecent")
}

func TestGetRecent_MalformedItem(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "SESSION#s1"},
		"SK": &types.AttributeValueMemberN{Value: "1"},
	}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	_, err := c.GetRecent(context.Background(), "s1", "", 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SK is not a string")
}

func TestGetRecent_ItemWithoutSortKey(t *testing.T) {
	item := map[string]types.AttributeValue{"message": &types.AttributeValueMemberS{Value: "سوال"}}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	_, err := mustNewClient(t, db).GetRecent(context.Background(), "s1", "", 5)
	require.ErrorContains(t, err, "without SK")
}

func TestGetRecent_NonPositiveLimit(t *testing.T) {
	db := &fakeDynamo{}
	turns, err := mustNewClient(t, db).GetRecent(context.Background(), "s1", "", 0)
	require.NoError(t, err)
	require.Empty(t, turns)
	require.Zero(t, db.queries)
}

func TestNewChatRecord(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	rec := c.NewChatRecord("s1", "", "فنی", "سوال", "پاسخ", domain.SourceOpenAI)
	require.Equal(t, "SESSION#s1", rec.PK)
	require.Equal(t, "CHAT#2026-03-01T10:00:00Z", rec.SK)
	require.Equal(t, now.Add(historyRetention).Unix(), rec.TTL)
	require.Equal(t, domain.SourceOpenAI, rec.Source)
}

func TestSaveChat_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	rec := c.NewChatRecord("s1", "42", "", "سوال", "پاسخ", domain.SourceDatabase)

	require.NoError(t, c.SaveChat(context.Background(), rec))
	item := db.lastPutInput.Item
	require.Equal(t, "USER#42", item["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "پاسخ", item["response"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "database", item["source"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "42", item["userId"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "s1", item["sessionId"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "attribute_not_exists(SK)", *db.lastPutInput.ConditionExpression)
}

func TestSaveChat_OmitsUnknownIdentifiers(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.SaveChat(context.Background(), c.NewChatRecord("s1", "", "", "q", "a", domain.SourceOpenAI)))
	require.NotContains(t, db.lastPutInput.Item, "userId")
	require.Contains(t, db.lastPutInput.Item, "sessionId")
}

func TestSaveChat_NoOwner(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	err := c.SaveChat(context.Background(), c.NewChatRecord("", "", "", "q", "a", domain.SourceOpenAI))
	require.ErrorContains(t, err, "PK and SK are required")
}

func TestSaveChat_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	c := mustNewClient(t, db)
	err := c.SaveChat(context.Background(), c.NewChatRecord("s1", "", "", "q", "a", domain.SourceOpenAI))
	require.Error(t, err)
	require.Contains(t, err.Error(), "SaveChat")
}
