package ecs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/smithy-go"
)

// DefaultMetricPeriod is the CloudWatch aggregation period for CPU samples.
const DefaultMetricPeriod = 5 * time.Minute

// ECSAPI is the subset of the ECS client used here.
type ECSAPI interface {
	DescribeServices(ctx context.Context, in *awsecs.DescribeServicesInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeServicesOutput, error)
	ListTasks(ctx context.Context, in *awsecs.ListTasksInput, optFns ...func(*awsecs.Options)) (*awsecs.ListTasksOutput, error)
	UpdateService(ctx context.Context, in *awsecs.UpdateServiceInput, optFns ...func(*awsecs.Options)) (*awsecs.UpdateServiceOutput, error)
}

// CloudWatchAPI is the subset of the CloudWatch client used here.
type CloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, in *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Client adapts the AWS SDK to the dispatcher's orchestration and metrics
// interfaces.
type Client struct {
	ecs          ECSAPI
	cw           CloudWatchAPI
	metricPeriod time.Duration
	logger       *slog.Logger
}

// NewClient builds a Client. cfg is an aws.Config from config.LoadDefaultConfig.
func NewClient(cfg aws.Config, logger *slog.Logger) *Client {
	return NewClientWithAPIs(awsecs.NewFromConfig(cfg), cloudwatch.NewFromConfig(cfg), logger)
}

// NewClientWithAPIs builds a Client over explicit API implementations.
func NewClientWithAPIs(e ECSAPI, cw CloudWatchAPI, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{ecs: e, cw: cw, metricPeriod: DefaultMetricPeriod, logger: logger}
}

// SetMetricPeriod overrides the CloudWatch period; non-positive values are ignored.
func (c *Client) SetMetricPeriod(d time.Duration) {
	if d > 0 {
		c.metricPeriod = d
	}
}

// DescribeService returns the service descriptor or ErrServiceNotFound.
func (c *Client) DescribeService(ctx context.Context, cluster, service string) (*Service, error) {
	out, err := c.ecs.DescribeServices(ctx, &awsecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{service},
	})
	if err != nil {
		return nil, fmt.Errorf("describe service %s/%s: %w", cluster, service, mapError(err))
	}
	if len(out.Services) == 0 {
		return nil, fmt.Errorf("describe service %s/%s: %w", cluster, service, ErrServiceNotFound)
	}

	svc := convertService(cluster, out.Services[0])
	return &svc, nil
}

// ListRunningTasks counts tasks of the service with desired status RUNNING.
func (c *Client) ListRunningTasks(ctx context.Context, cluster, service string) (int, error) {
	count := 0
	paginator := awsecs.NewListTasksPaginator(c.ecs, &awsecs.ListTasksInput{
		Cluster:       aws.String(cluster),
		ServiceName:   aws.String(service),
		DesiredStatus: ecstypes.DesiredStatusRunning,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list tasks %s/%s: %w", cluster, service, mapError(err))
		}
		count += len(page.TaskArns)
	}
	return count, nil
}

// ForceRedeploy starts a new deployment and returns its id. It does not wait
// for the rollout.
func (c *Client) ForceRedeploy(ctx context.Context, cluster, service string) (string, error) {
	out, err := c.ecs.UpdateService(ctx, &awsecs.UpdateServiceInput{
		Cluster:            aws.String(cluster),
		Service:            aws.String(service),
		ForceNewDeployment: true,
	})
	if err != nil {
		return "", fmt.Errorf("force redeploy %s/%s: %w", cluster, service, mapError(err))
	}
	if out.Service == nil {
		return "", nil
	}
	svc := convertService(cluster, *out.Service)
	primary, ok := svc.Primary()
	if !ok {
		c.logger.Warn("redeploy returned no deployments", "cluster", cluster, "service", service)
		return "", nil
	}
	return primary.ID, nil
}

// AverageCPUUtilization returns the Average of the most recent CPUUtilization
// datapoint in [start, end], or 0 when there is none.
func (c *Client) AverageCPUUtilization(ctx context.Context, cluster, service string, start, end time.Time) (float64, error) {
	out, err := c.cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/ECS"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("ServiceName"), Value: aws.String(service)},
			{Name: aws.String("ClusterName"), Value: aws.String(cluster)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(c.metricPeriod / time.Second)),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, fmt.Errorf("cpu utilization %s/%s: %w", cluster, service, mapError(err))
	}
	return latestAverage(out.Datapoints), nil
}

func latestAverage(points []cwtypes.Datapoint) float64 {
	var (
		latest time.Time
		value  float64
		found  bool
	)
	for _, p := range points {
		if p.Average == nil {
			continue
		}
		ts := aws.ToTime(p.Timestamp)
		if !found || ts.After(latest) {
			latest, value, found = ts, *p.Average, true
		}
	}
	return value
}

func convertService(cluster string, s ecstypes.Service) Service {
	svc := Service{
		Cluster:      cluster,
		Name:         aws.ToString(s.ServiceName),
		Status:       aws.ToString(s.Status),
		DesiredCount: int(s.DesiredCount),
		RunningCount: int(s.RunningCount),
		PendingCount: int(s.PendingCount),
	}
	for _, d := range s.Deployments {
		svc.Deployments = append(svc.Deployments, Deployment{
			ID:        aws.ToString(d.Id),
			Status:    aws.ToString(d.Status),
			UpdatedAt: aws.ToTime(d.UpdatedAt),
		})
	}
	for _, e := range firstN(s.Events, MaxEvents) {
		svc.Events = append(svc.Events, Event{
			CreatedAt: aws.ToTime(e.CreatedAt),
			Message:   aws.ToString(e.Message),
		})
	}
	return svc
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// apiError tags an AWS error with a package sentinel. Its message is the
// original one.
type apiError struct {
	kind error
	err  error
}

func (e *apiError) Error() string   { return e.err.Error() }
func (e *apiError) Unwrap() []error { return []error{e.kind, e.err} }

// mapError translates AWS error codes into package sentinels, keeping the
// original error in the chain.
func mapError(err error) error {
	var (
		svcNotFound     *ecstypes.ServiceNotFoundException
		clusterNotFound *ecstypes.ClusterNotFoundException
		accessDenied    *ecstypes.AccessDeniedException
	)
	switch {
	case errors.As(err, &svcNotFound):
		return &apiError{kind: ErrServiceNotFound, err: err}
	case errors.As(err, &clusterNotFound):
		return &apiError{kind: ErrClusterNotFound, err: err}
	case errors.As(err, &accessDenied):
		return &apiError{kind: ErrPermissionDenied, err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return &apiError{kind: ErrPermissionDenied, err: err}
		}
	}
	return err
}
