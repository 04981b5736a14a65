package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/tasks/internal/logging"
	"github.com/jacentio/tasks/store"
)

// Handler adapts DynamoDB Streams Lambda invocations to the Projector.
type Handler struct {
	projector      *Projector
	logger         *slog.Logger
	reportFailures bool
}

// NewHandler creates a new stream handler.
func NewHandler(p *Projector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		projector: p,
		logger:    logger,
	}
}

// SetReportBatchItemFailures makes HandleDynamoDBEvent return failed records
// as batch item failures so the event source mapping redelivers them.
// The mapping must have ReportBatchItemFailures enabled.
func (h *Handler) SetReportBatchItemFailures(enabled bool) {
	h.reportFailures = enabled
}

// HandleDynamoDBEvent projects a stream batch into the search index.
// This function is designed to be used as an AWS Lambda handler.
// A failed record never fails the invocation.
func (h *Handler) HandleDynamoDBEvent(ctx context.Context, event events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	logger := logging.FromLambda(ctx, h.logger)
	logger.Info("stream batch received", "records", len(event.Records))

	batch := make([]ChangeEvent, 0, len(event.Records))
	sequence := make(map[string]string, len(event.Records))
	for _, record := range event.Records {
		ev, err := DecodeRecord(record)
		if err != nil {
			// A record that cannot be decoded never will be; drop it.
			logger.Error("failed to decode stream record",
				"eventID", record.EventID,
				"error", err,
			)
			continue
		}
		batch = append(batch, ev)
		sequence[ev.ID] = record.Change.SequenceNumber
	}

	report := h.projector.process(ctx, batch, logger)

	var resp events.DynamoDBEventResponse
	if err := report.Err(); err != nil {
		logger.Warn("batch partially projected", "error", err)
	}
	if !h.reportFailures {
		return resp, nil
	}
	for _, o := range report.Failed() {
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.DynamoDBBatchItemFailure{
			ItemIdentifier: sequence[o.EventID],
		})
	}
	return resp, nil
}

// stringAttrs must be strings in a new image. attributevalue would otherwise
// decode a number into a string field.
var stringAttrs = []string{store.AttrTitle, store.AttrDescription, store.AttrLastUpdateTime}

// DecodeRecord converts a stream record into a ChangeEvent.
// Missing key fields are left empty for the Projector to skip; only a
// malformed new image, such as a non-string title, is an error.
func DecodeRecord(record events.DynamoDBEventRecord) (ChangeEvent, error) {
	ev := ChangeEvent{
		ID:   record.EventID,
		Kind: ParseKind(record.EventName),
		Key: Key{
			Owner:  getStringAttr(record.Change.Keys, store.AttrOwner),
			ItemID: getStringAttr(record.Change.Keys, store.AttrItemID),
		},
	}

	if ev.Kind == Removed || len(record.Change.NewImage) == 0 {
		return ev, nil
	}

	for _, attr := range stringAttrs {
		if v, ok := record.Change.NewImage[attr]; ok && v.DataType() != events.DataTypeString {
			return ChangeEvent{}, fmt.Errorf("new image attribute %s is not a string", attr)
		}
	}

	var item store.Item
	if err := attributevalue.UnmarshalMap(ConvertImage(record.Change.NewImage), &item); err != nil {
		return ChangeEvent{}, fmt.Errorf("unmarshal new image: %w", err)
	}
	ev.NewState = &item
	return ev, nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// ConvertImage converts a DynamoDB stream image to SDK attribute values,
// so it can be decoded with attributevalue.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		if av := convertAttr(v); av != nil {
			result[k] = av
		}
	}
	return result
}

func convertAttr(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(v.List()))
		for _, item := range v.List() {
			if av := convertAttr(item); av != nil {
				list = append(list, av)
			}
		}
		return &types.AttributeValueMemberL{Value: list}
	case events.DataTypeMap:
		return &types.AttributeValueMemberM{Value: ConvertImage(v.Map())}
	}
	return nil
}
