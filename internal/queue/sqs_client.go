package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSClient sends queue messages to AWS SQS.
type SQSClient struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSClient constructs an SQS-backed queue client. An empty region defers
// to the default AWS configuration chain.
func NewSQSClient(ctx context.Context, queueURL, region string) (*SQSClient, error) {
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, fmt.Errorf("sqs queue url is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region = strings.TrimSpace(region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SQSClient{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}, nil
}

// Send delivers a message to the configured SQS queue.
func (s *SQSClient) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode sqs message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: messageAttributes(msg),
	}
	// FIFO queues reject messages without a group id.
	if strings.HasSuffix(s.queueURL, ".fifo") {
		input.MessageGroupId = aws.String(msg.SessionID)
		input.MessageDeduplicationId = aws.String(msg.AnalysisID + ":" + msg.Status)
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("sqs send message: %w", err)
	}
	return nil
}

// messageAttributes exposes status and mode so subscribers can filter without decoding the body.
func messageAttributes(msg Message) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{}
	for name, value := range map[string]string{"status": msg.Status, "mode": msg.Mode, "overallRisk": msg.OverallRisk} {
		if value == "" {
			continue
		}
		attrs[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}
	return attrs
}

var _ Client = (*SQSClient)(nil)
