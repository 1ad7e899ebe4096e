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
	"github.com/eventhive/event-registration/events"
	"github.com/eventhive/event-registration/slices"
	"github.com/google/uuid"
)

var _ events.Repository = &DB{}

type eventDynamo struct {
	PK                    string
	SK                    string
	GSI1PK                string
	GSI1SK                string
	ID                    string
	Version               int
	Title                 string
	Description           string
	ShortDescription      string
	EventDate             *time.Time `dynamodbav:",omitempty"`
	RegistrationCloseTime *time.Time `dynamodbav:",omitempty"`
	// Epoch copy of the deadline; the open-events filter compares numbers
	// because RFC3339 strings don't order reliably across fractional digits.
	RegistrationCloseEpoch *int64 `dynamodbav:",omitempty"`
	Questions              []questionDynamo
	CustomFields          []customFieldDynamo
	NumAttendees          int
	NumCheckedIn          int
}

type questionDynamo struct {
	ID         string
	Text       string
	Type       string
	Required   bool
	Attributes *string `dynamodbav:",omitempty"`
}

type customFieldDynamo struct {
	Name  string
	Value string
}

const (
	eventEntityName = "EVENT"
)

func eventPK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", eventEntityName, id)
}

func eventSK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", eventEntityName, id)
}

func newEventDynamo(event events.Event) eventDynamo {
	// Dateless events sort to the front of the zero-time bucket; the listing
	// only promises newest-dated first.
	var sortDate time.Time
	if event.EventDate != nil {
		sortDate = *event.EventDate
	}

	var closeEpoch *int64
	if event.RegistrationCloseTime != nil {
		epoch := event.RegistrationCloseTime.Unix()
		closeEpoch = &epoch
	}

	return eventDynamo{
		PK:                    eventPK(event.ID),
		SK:                    eventSK(event.ID),
		GSI1PK:                eventEntityName,
		GSI1SK:                fmt.Sprintf("%s#%s#%s", eventEntityName, sortDate.UTC().Format(time.RFC3339), event.ID),
		ID:                    event.ID.String(),
		Version:               event.Version,
		Title:                 event.Title,
		Description:           event.Description,
		ShortDescription:      event.ShortDescription,
		EventDate:              event.EventDate,
		RegistrationCloseTime:  event.RegistrationCloseTime,
		RegistrationCloseEpoch: closeEpoch,
		Questions: slices.Map(event.Questions, func(q events.Question) questionDynamo {
			return questionToDynamo(q)
		}),
		CustomFields: slices.Map(event.CustomFields, func(f events.CustomField) customFieldDynamo {
			return customFieldDynamo{Name: f.Name, Value: f.Value}
		}),
		NumAttendees: event.NumAttendees,
		NumCheckedIn: event.NumCheckedIn,
	}
}

func eventFromEventDynamo(event eventDynamo) events.Event {
	return events.Event{
		ID:                    uuid.MustParse(event.ID),
		Version:               event.Version,
		Title:                 event.Title,
		Description:           event.Description,
		ShortDescription:      event.ShortDescription,
		EventDate:             event.EventDate,
		RegistrationCloseTime: event.RegistrationCloseTime,
		Questions: slices.Map(event.Questions, func(q questionDynamo) events.Question {
			return questionFromDynamo(q)
		}),
		CustomFields: slices.Map(event.CustomFields, func(f customFieldDynamo) events.CustomField {
			return events.CustomField{Name: f.Name, Value: f.Value}
		}),
		NumAttendees: event.NumAttendees,
		NumCheckedIn: event.NumCheckedIn,
	}
}

func questionToDynamo(q events.Question) questionDynamo {
	return questionDynamo{
		ID:         q.ID.String(),
		Text:       q.Text,
		Type:       string(q.Type),
		Required:   q.Required,
		Attributes: q.Attributes,
	}
}

func questionFromDynamo(q questionDynamo) events.Question {
	return events.Question{
		ID:         uuid.MustParse(q.ID),
		Text:       q.Text,
		Type:       events.QuestionType(q.Type),
		Required:   q.Required,
		Attributes: q.Attributes,
	}
}

func (d *DB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK(id)},
			"SK": &types.AttributeValueMemberS{Value: eventSK(id)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return events.Event{}, events.NewTimeoutError("GetEvent timed out")
		}
		return events.Event{}, events.NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", id), err)
	}

	if len(resp.Item) == 0 {
		return events.Event{}, events.NewEventDoesNotExistError(fmt.Sprintf("Event with ID %q not found", id), nil)
	}

	var event eventDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &event)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal event from DB: %s", err))
	}
	return eventFromEventDynamo(event), nil
}

func (d *DB) CreateEvent(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	dynamoItem := newEventDynamo(event)

	item, err := attributevalue.MarshalMap(dynamoItem)
	if err != nil {
		return events.NewFailedToTranslateToDBModelError("Failed to convert Event to eventDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(dynamoItem.Version)))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return events.NewEventAlreadyExistsError(fmt.Sprintf("Event with ID %q already exists", event.ID), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.NewTimeoutError("CreateEvent timed out")
		} else {
			return events.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) UpdateEvent(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	dynamoItem := newEventDynamo(event)

	item, err := attributevalue.MarshalMap(dynamoItem)
	if err != nil {
		return events.NewFailedToTranslateToDBModelError("Failed to convert Event to eventDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(dynamoItem.Version)))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return events.NewEventDoesNotExistError(fmt.Sprintf("Event with ID %q does not exist", event.ID), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.NewTimeoutError("UpdateEvent timed out")
		} else {
			return events.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) GetOpenEvents(ctx context.Context, now time.Time, limit int32, cursor *string) (events.GetOpenEventsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(eventEntityName)).
		And(expression.Key("GSI1SK").BeginsWith(eventEntityName))

	// Open = no deadline attribute, or deadline still in the future.
	openFilter := expression.Name("RegistrationCloseEpoch").AttributeNotExists().
		Or(expression.Name("RegistrationCloseEpoch").GreaterThanEqual(expression.Value(now.Unix())))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(openFilter).
		Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = cursorToLastEval(*cursor)
		if err != nil {
			return events.GetOpenEventsResponse{}, events.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	// Limit is applied before the filter, so a page can come back short while
	// more open events sit past LastEvaluatedKey. Keep querying until a full
	// page is collected or the index is exhausted.
	var items []map[string]types.AttributeValue
	for {
		result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
			IndexName:                 aws.String(gsi1),
			TableName:                 aws.String(d.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			// Want to sort newest event first
			ScanIndexForward: aws.Bool(false),
			// Fetch 1 more than limit to check if there is another page or not
			Limit:             aws.Int32(limit + 1),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return events.GetOpenEventsResponse{}, events.NewTimeoutError("GetOpenEvents timed out")
			}
			return events.GetOpenEventsResponse{}, events.NewFailedToFetchError("Failed to fetch events from dynamo", err)
		}

		items = append(items, result.Items...)
		if len(items) > int(limit) || len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	hasNextPage := len(items) > int(limit)
	if hasNextPage {
		items = items[:limit]
	}

	var dynamoItems []eventDynamo
	err = attributevalue.UnmarshalListOfMaps(items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo events: %s", err))
	}

	var newCursor *string
	if hasNextPage {
		// Resume after the last item actually handed out, not after the last
		// item the query evaluated.
		lastItemKey := keyFromItem(items[len(items)-1], "PK", "SK", "GSI1PK", "GSI1SK")
		c, err := lastEvalKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return events.GetOpenEventsResponse{
		Data: slices.Map(dynamoItems, func(v eventDynamo) events.Event {
			return eventFromEventDynamo(v)
		}),
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}
