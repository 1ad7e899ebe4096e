package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/eventhive/event-registration/attendees"
	"github.com/eventhive/event-registration/events"
	"github.com/eventhive/event-registration/slices"
	"github.com/google/uuid"
)

var _ attendees.Repository = &DB{}

type attendeeDynamo struct {
	PK string
	SK string

	// GSI2 is sparse: keys exist only once a check-in hash has been issued.
	GSI2PK *string `dynamodbav:",omitempty"`
	GSI2SK *string `dynamodbav:",omitempty"`

	ID           uuid.UUID
	Version      int
	EventID      uuid.UUID
	Email        string
	RegisteredAt time.Time
	Answers      []answerDynamo
	CheckInHash  *string    `dynamodbav:",omitempty"`
	CheckedIn    bool
	CheckedInAt  *time.Time `dynamodbav:",omitempty"`
}

type answerDynamo struct {
	QuestionID uuid.UUID
	AnswerText string
}

const (
	attendeeEntityName = "ATTENDEE"
	checkInHashName    = "CHECKINHASH"
)

func attendeePK(eventId uuid.UUID) string {
	return eventPK(eventId)
}

func attendeeSK(email string) string {
	return fmt.Sprintf("%s#%s", attendeeEntityName, email)
}

func checkInHashGSI2PK(hash string) string {
	return fmt.Sprintf("%s#%s", checkInHashName, hash)
}

func attendeeToDynamo(attendee attendees.Attendee) attendeeDynamo {
	item := attendeeDynamo{
		PK:           attendeePK(attendee.EventID),
		SK:           attendeeSK(attendee.Email),
		ID:           attendee.ID,
		Version:      attendee.Version,
		EventID:      attendee.EventID,
		Email:        attendee.Email,
		RegisteredAt: attendee.RegisteredAt,
		Answers: slices.Map(attendee.Answers, func(a attendees.Answer) answerDynamo {
			return answerDynamo{QuestionID: a.QuestionID, AnswerText: a.AnswerText}
		}),
		CheckInHash: attendee.CheckInHash,
		CheckedIn:   attendee.CheckedIn,
		CheckedInAt: attendee.CheckedInAt,
	}
	if attendee.CheckInHash != nil {
		gsi2pk := checkInHashGSI2PK(*attendee.CheckInHash)
		gsi2sk := item.SK
		item.GSI2PK = &gsi2pk
		item.GSI2SK = &gsi2sk
	}
	return item
}

func attendeeFromDynamo(item attendeeDynamo) attendees.Attendee {
	return attendees.Attendee{
		ID:           item.ID,
		Version:      item.Version,
		EventID:      item.EventID,
		Email:        item.Email,
		RegisteredAt: item.RegisteredAt,
		Answers: slices.Map(item.Answers, func(a answerDynamo) attendees.Answer {
			return attendees.Answer{QuestionID: a.QuestionID, AnswerText: a.AnswerText}
		}),
		CheckInHash: item.CheckInHash,
		CheckedIn:   item.CheckedIn,
		CheckedInAt: item.CheckedInAt,
	}
}

// CreateAttendee writes the attendee and the updated event counters in one
// transaction. The attendee put is conditional on the (event, email) key not
// existing yet, which makes email uniqueness per event a storage guarantee
// rather than a read-then-write hope.
func (d *DB) CreateAttendee(ctx context.Context, attendee attendees.Attendee, event events.Event) error {
	dynamoAttendee := attendeeToDynamo(attendee)

	attendeeItem, err := attributevalue.MarshalMap(dynamoAttendee)
	if err != nil {
		return attendees.NewFailedToTranslateToDBModelError("Failed to translate attendee to dynamo model", err)
	}
	attendeeExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(dynamoAttendee.Version)))

	dynamoEvent := newEventDynamo(event)

	eventItem, err := attributevalue.MarshalMap(dynamoEvent)
	if err != nil {
		return attendees.NewFailedToTranslateToDBModelError("Failed to translate event to dynamo model", err)
	}
	eventExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(event.Version)))

	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                 aws.String(d.tableName),
					Item:                      attendeeItem,
					ConditionExpression:       attendeeExpr.Condition(),
					ExpressionAttributeNames:  attendeeExpr.Names(),
					ExpressionAttributeValues: attendeeExpr.Values(),
				},
			},
			{
				Put: &types.Put{
					TableName:                 aws.String(d.tableName),
					Item:                      eventItem,
					ConditionExpression:       eventExpr.Condition(),
					ExpressionAttributeNames:  eventExpr.Names(),
					ExpressionAttributeValues: eventExpr.Values(),
				},
			},
		},
	})
	if err != nil {
		var transactionFailedErr *types.TransactionCanceledException
		if errors.As(err, &transactionFailedErr) {
			reasons := transactionFailedErr.CancellationReasons
			if len(reasons) > 0 && reasons[0].Code != nil && *reasons[0].Code == "ConditionalCheckFailed" {
				return attendees.NewAttendeeAlreadyExistsError(fmt.Sprintf("Attendee %q already registered for event %q", attendee.Email, attendee.EventID), err)
			}
			return attendees.NewFailedToWriteError("Version conflict error", err)
		}
		return attendees.NewFailedToWriteError("Failed TransactWriteItems call", err)
	}

	return nil
}

func (d *DB) GetAttendee(ctx context.Context, eventId uuid.UUID, email string) (attendees.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: attendeePK(eventId)},
			"SK": &types.AttributeValueMemberS{Value: attendeeSK(email)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return attendees.Attendee{}, attendees.NewTimeoutError("GetAttendee timed out")
		}
		return attendees.Attendee{}, attendees.NewFailedToFetchError(fmt.Sprintf("Failed to fetch attendee %q for event %q", email, eventId), err)
	}

	if len(resp.Item) == 0 {
		return attendees.Attendee{}, attendees.NewAttendeeDoesNotExistError(fmt.Sprintf("Attendee %q not found for event %q", email, eventId), nil)
	}

	var item attendeeDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &item)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal attendee from DB: %s", err))
	}
	return attendeeFromDynamo(item), nil
}

func (d *DB) GetAttendeeByHash(ctx context.Context, hash string) (attendees.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI2PK").Equal(expression.Value(checkInHashGSI2PK(hash)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi2),
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return attendees.Attendee{}, attendees.NewTimeoutError("GetAttendeeByHash timed out")
		}
		return attendees.Attendee{}, attendees.NewFailedToFetchError("Failed to query attendee by check-in hash", err)
	}

	if len(result.Items) == 0 {
		return attendees.Attendee{}, attendees.NewAttendeeDoesNotExistError("No attendee found for check-in hash", nil)
	}

	var item attendeeDynamo
	err = attributevalue.UnmarshalMap(result.Items[0], &item)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal attendee from DB: %s", err))
	}
	return attendeeFromDynamo(item), nil
}

func (d *DB) SetCheckInHash(ctx context.Context, eventId uuid.UUID, email string, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	expr := exprMustBuild(expression.NewBuilder().
		WithUpdate(expression.
			Set(expression.Name("CheckInHash"), expression.Value(hash)).
			Set(expression.Name("GSI2PK"), expression.Value(checkInHashGSI2PK(hash))).
			Set(expression.Name("GSI2SK"), expression.Value(attendeeSK(email)))).
		WithCondition(expression.Name("PK").AttributeExists()))

	_, err := d.dynamoClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: attendeePK(eventId)},
			"SK": &types.AttributeValueMemberS{Value: attendeeSK(email)},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return attendees.NewAttendeeDoesNotExistError(fmt.Sprintf("Attendee %q not found for event %q", email, eventId), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return attendees.NewTimeoutError("SetCheckInHash timed out")
		}
		return attendees.NewFailedToWriteError("Failed UpdateItem call", err)
	}

	return nil
}

// MarkCheckedIn flips the attendee's flag and rewrites the event with its
// bumped check-in counter in one transaction, the same shape as
// CreateAttendee.
func (d *DB) MarkCheckedIn(ctx context.Context, attendee attendees.Attendee, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	attendeeExpr := exprMustBuild(expression.NewBuilder().
		WithUpdate(expression.
			Set(expression.Name("CheckedIn"), expression.Value(attendee.CheckedIn)).
			Set(expression.Name("CheckedInAt"), expression.Value(attendee.CheckedInAt))).
		WithCondition(expression.Name("PK").AttributeExists()))

	dynamoEvent := newEventDynamo(event)

	eventItem, err := attributevalue.MarshalMap(dynamoEvent)
	if err != nil {
		return attendees.NewFailedToTranslateToDBModelError("Failed to translate event to dynamo model", err)
	}
	eventExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(event.Version)))

	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(d.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: attendeePK(attendee.EventID)},
						"SK": &types.AttributeValueMemberS{Value: attendeeSK(attendee.Email)},
					},
					UpdateExpression:          attendeeExpr.Update(),
					ConditionExpression:       attendeeExpr.Condition(),
					ExpressionAttributeNames:  attendeeExpr.Names(),
					ExpressionAttributeValues: attendeeExpr.Values(),
				},
			},
			{
				Put: &types.Put{
					TableName:                 aws.String(d.tableName),
					Item:                      eventItem,
					ConditionExpression:       eventExpr.Condition(),
					ExpressionAttributeNames:  eventExpr.Names(),
					ExpressionAttributeValues: eventExpr.Values(),
				},
			},
		},
	})
	if err != nil {
		var transactionFailedErr *types.TransactionCanceledException
		if errors.As(err, &transactionFailedErr) {
			reasons := transactionFailedErr.CancellationReasons
			if len(reasons) > 0 && reasons[0].Code != nil && *reasons[0].Code == "ConditionalCheckFailed" {
				return attendees.NewAttendeeDoesNotExistError(fmt.Sprintf("Attendee %q not found for event %q", attendee.Email, attendee.EventID), err)
			}
			return attendees.NewFailedToWriteError("Version conflict error", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return attendees.NewTimeoutError("MarkCheckedIn timed out")
		}
		return attendees.NewFailedToWriteError("Failed TransactWriteItems call", err)
	}

	return nil
}

func (d *DB) GetAllAttendeesForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (attendees.GetAllAttendeesResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("PK").Equal(expression.Value(attendeePK(eventId))).
		And(expression.Key("SK").BeginsWith(attendeeEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = cursorToLastEval(*cursor)
		if err != nil {
			return attendees.GetAllAttendeesResponse{}, attendees.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return attendees.GetAllAttendeesResponse{}, attendees.NewTimeoutError("GetAllAttendeesForEvent timed out")
		}
		return attendees.GetAllAttendeesResponse{}, attendees.NewFailedToFetchError("Failed to fetch attendees from dynamo", err)
	}

	var dynamoItems []attendeeDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo attendees: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra item to check for next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := getKeyFromItem(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := lastEvalKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return attendees.GetAllAttendeesResponse{
		Data: slices.Map(dynamoItems, func(v attendeeDynamo) attendees.Attendee {
			return attendeeFromDynamo(v)
		})[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}
