package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// snsSubjectLimit is SNS's maximum Subject length.
const snsSubjectLimit = 100

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes alerts to an SNS topic.
type SNSPublisher struct {
	api      SNSAPI
	topicARN string
}

// NewSNSPublisher builds a publisher for topicARN.
func NewSNSPublisher(api SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{api: api, topicARN: topicARN}
}

// NewSNSPublisherFromConfig builds the SNS client from an aws.Config.
func NewSNSPublisherFromConfig(cfg aws.Config, topicARN string) *SNSPublisher {
	return NewSNSPublisher(sns.NewFromConfig(cfg), topicARN)
}

// Publish sends one message. Subjects longer than SNS allows are truncated.
func (p *SNSPublisher) Publish(ctx context.Context, subject, body string) error {
	if len(subject) > snsSubjectLimit {
		subject = subject[:snsSubjectLimit]
	}
	_, err := p.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
