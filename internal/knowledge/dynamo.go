package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrKey   = "key"
	attrValue = "value"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoSource.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoSource builds the knowledge document from a DynamoDB table. Each item
// contributes one top-level entry: its "key" string attribute names the entry
// and its "value" attribute holds the entry, either as JSON text or as a
// plain string, number or boolean.
type DynamoSource struct {
	api       dynamodbAPI
	tableName string
}

// NewDynamoSource creates a DynamoSource reading tableName.
func NewDynamoSource(api dynamodbAPI, tableName string) (*DynamoSource, error) {
	if api == nil {
		return nil, errors.New("knowledge: dynamodb api must not be nil")
	}
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return nil, errors.New("knowledge: table name must not be empty")
	}
	return &DynamoSource{api: api, tableName: tableName}, nil
}

func (s *DynamoSource) String() string {
	return "dynamodb:" + s.tableName
}

// Fetch scans the whole table and returns the assembled JSON object.
// An empty table is reported as ErrNotFound.
func (s *DynamoSource) Fetch(ctx context.Context) ([]byte, error) {
	entries := make(map[string]json.RawMessage)

	p := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("knowledge: scan %s: %w", s.tableName, err)
		}
		for _, item := range out.Items {
			key, value, err := itemToEntry(item)
			if err != nil {
				return nil, fmt.Errorf("knowledge: decode item from %s: %w", s.tableName, err)
			}
			entries[key] = value
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: table %s is empty", ErrNotFound, s.tableName)
	}
	// encoding/json writes map keys in sorted order, so the document is stable
	// regardless of scan order.
	data, err := encodeJSON(entries)
	if err != nil {
		return nil, fmt.Errorf("knowledge: encode %s: %w", s.tableName, err)
	}
	return data, nil
}

func itemToEntry(item map[string]types.AttributeValue) (string, json.RawMessage, error) {
	key, err := strAttr(item, attrKey)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(key) == "" {
		return "", nil, fmt.Errorf("attribute %q is empty", attrKey)
	}

	v, ok := item[attrValue]
	if !ok {
		return "", nil, fmt.Errorf("missing attribute %q", attrValue)
	}
	switch tv := v.(type) {
	case *types.AttributeValueMemberS:
		raw := strings.TrimSpace(tv.Value)
		if json.Valid([]byte(raw)) && raw != "" {
			return key, json.RawMessage(raw), nil
		}
		quoted, err := encodeJSON(tv.Value)
		if err != nil {
			return "", nil, err
		}
		return key, quoted, nil
	case *types.AttributeValueMemberN:
		if !json.Valid([]byte(tv.Value)) {
			return "", nil, fmt.Errorf("attribute %q is not a valid number", attrValue)
		}
		return key, json.RawMessage(tv.Value), nil
	case *types.AttributeValueMemberBOOL:
		if tv.Value {
			return key, json.RawMessage("true"), nil
		}
		return key, json.RawMessage("false"), nil
	default:
		return "", nil, fmt.Errorf("attribute %q has unsupported type %T", attrValue, v)
	}
}

// encodeJSON marshals v without HTML escaping so table text reaches the
// prompt exactly as a file document would.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a string", key)
	}
	return s.Value, nil
}
