package ecs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeECS struct {
	describeFn func(*awsecs.DescribeServicesInput) (*awsecs.DescribeServicesOutput, error)
	listFn     func(*awsecs.ListTasksInput) (*awsecs.ListTasksOutput, error)
	updateFn   func(*awsecs.UpdateServiceInput) (*awsecs.UpdateServiceOutput, error)
}

func (f *fakeECS) DescribeServices(_ context.Context, in *awsecs.DescribeServicesInput, _ ...func(*awsecs.Options)) (*awsecs.DescribeServicesOutput, error) {
	return f.describeFn(in)
}

func (f *fakeECS) ListTasks(_ context.Context, in *awsecs.ListTasksInput, _ ...func(*awsecs.Options)) (*awsecs.ListTasksOutput, error) {
	return f.listFn(in)
}

func (f *fakeECS) UpdateService(_ context.Context, in *awsecs.UpdateServiceInput, _ ...func(*awsecs.Options)) (*awsecs.UpdateServiceOutput, error) {
	return f.updateFn(in)
}

type fakeCloudWatch struct {
	fn func(*cloudwatch.GetMetricStatisticsInput) (*cloudwatch.GetMetricStatisticsOutput, error)
}

func (f *fakeCloudWatch) GetMetricStatistics(_ context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	return f.fn(in)
}

func TestDescribeServiceConvertsDescriptor(t *testing.T) {
	updated := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	events := make([]ecstypes.ServiceEvent, 5)
	for i := range events {
		events[i] = ecstypes.ServiceEvent{
			CreatedAt: aws.Time(updated.Add(-time.Duration(i) * time.Minute)),
			Message:   aws.String("event"),
		}
	}

	api := &fakeECS{describeFn: func(in *awsecs.DescribeServicesInput) (*awsecs.DescribeServicesOutput, error) {
		assert.Equal(t, "prod", aws.ToString(in.Cluster))
		assert.Equal(t, []string{"api"}, in.Services)
		return &awsecs.DescribeServicesOutput{Services: []ecstypes.Service{{
			ServiceName:  aws.String("api"),
			Status:       aws.String("ACTIVE"),
			DesiredCount: 3,
			RunningCount: 2,
			PendingCount: 1,
			Deployments: []ecstypes.Deployment{
				{Id: aws.String("ecs-svc/1"), Status: aws.String("PRIMARY"), UpdatedAt: aws.Time(updated)},
			},
			Events: events,
		}}}, nil
	}}

	c := NewClientWithAPIs(api, nil, nil)
	svc, err := c.DescribeService(context.Background(), "prod", "api")
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", svc.Status)
	assert.Equal(t, 3, svc.DesiredCount)
	assert.Equal(t, 2, svc.RunningCount)
	assert.Equal(t, 1, svc.PendingCount)
	assert.Len(t, svc.Events, MaxEvents)
	primary, ok := svc.Primary()
	require.True(t, ok)
	assert.Equal(t, "ecs-svc/1", primary.ID)
	assert.Equal(t, updated, primary.UpdatedAt)
}

func TestDescribeServiceNotFound(t *testing.T) {
	api := &fakeECS{describeFn: func(*awsecs.DescribeServicesInput) (*awsecs.DescribeServicesOutput, error) {
		return &awsecs.DescribeServicesOutput{Failures: []ecstypes.Failure{{Reason: aws.String("MISSING")}}}, nil
	}}

	_, err := NewClientWithAPIs(api, nil, nil).DescribeService(context.Background(), "prod", "ghost")
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.True(t, IsNotFound(err))
}

func TestDescribeServiceClusterNotFound(t *testing.T) {
	api := &fakeECS{describeFn: func(*awsecs.DescribeServicesInput) (*awsecs.DescribeServicesOutput, error) {
		return nil, &ecstypes.ClusterNotFoundException{Message: aws.String("Cluster not found.")}
	}}

	_, err := NewClientWithAPIs(api, nil, nil).DescribeService(context.Background(), "nope", "api")
	assert.ErrorIs(t, err, ErrClusterNotFound)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Cluster not found.")
}

func TestListRunningTasksPaginates(t *testing.T) {
	calls := 0
	api := &fakeECS{listFn: func(in *awsecs.ListTasksInput) (*awsecs.ListTasksOutput, error) {
		calls++
		assert.Equal(t, ecstypes.DesiredStatusRunning, in.DesiredStatus)
		if in.NextToken == nil {
			return &awsecs.ListTasksOutput{TaskArns: []string{"t1", "t2"}, NextToken: aws.String("page2")}, nil
		}
		return &awsecs.ListTasksOutput{TaskArns: []string{"t3"}}, nil
	}}

	n, err := NewClientWithAPIs(api, nil, nil).ListRunningTasks(context.Background(), "prod", "api")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, calls)
}

func TestForceRedeployReturnsPrimaryDeployment(t *testing.T) {
	api := &fakeECS{updateFn: func(in *awsecs.UpdateServiceInput) (*awsecs.UpdateServiceOutput, error) {
		assert.True(t, in.ForceNewDeployment)
		return &awsecs.UpdateServiceOutput{Service: &ecstypes.Service{
			Deployments: []ecstypes.Deployment{
				{Id: aws.String("ecs-svc/old"), Status: aws.String("ACTIVE")},
				{Id: aws.String("ecs-svc/new"), Status: aws.String("PRIMARY")},
			},
		}}, nil
	}}

	id, err := NewClientWithAPIs(api, nil, nil).ForceRedeploy(context.Background(), "prod", "api")
	require.NoError(t, err)
	assert.Equal(t, "ecs-svc/new", id)
}

func TestForceRedeployMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"service missing", &ecstypes.ServiceNotFoundException{Message: aws.String("Service not found.")}, ErrServiceNotFound},
		{"access denied", &ecstypes.AccessDeniedException{Message: aws.String("denied")}, ErrPermissionDenied},
		{"generic access denied code", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "nope"}, ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeECS{updateFn: func(*awsecs.UpdateServiceInput) (*awsecs.UpdateServiceOutput, error) {
				return nil, tt.err
			}}
			_, err := NewClientWithAPIs(api, nil, nil).ForceRedeploy(context.Background(), "prod", "api")
			assert.ErrorIs(t, err, tt.want)
			assert.NotContains(t, err.Error(), "\n")
		})
	}
}

func TestForceRedeployPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("throttled")
	api := &fakeECS{updateFn: func(*awsecs.UpdateServiceInput) (*awsecs.UpdateServiceOutput, error) {
		return nil, boom
	}}
	_, err := NewClientWithAPIs(api, nil, nil).ForceRedeploy(context.Background(), "prod", "api")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotFound(err))
}

func TestAverageCPUUtilizationPicksLatestDatapoint(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cw := &fakeCloudWatch{fn: func(in *cloudwatch.GetMetricStatisticsInput) (*cloudwatch.GetMetricStatisticsOutput, error) {
		assert.Equal(t, "AWS/ECS", aws.ToString(in.Namespace))
		assert.Equal(t, "CPUUtilization", aws.ToString(in.MetricName))
		assert.Equal(t, int32(300), aws.ToInt32(in.Period))
		assert.Equal(t, start, aws.ToTime(in.StartTime))
		assert.Equal(t, now, aws.ToTime(in.EndTime))
		return &cloudwatch.GetMetricStatisticsOutput{Datapoints: []cwtypes.Datapoint{
			{Timestamp: aws.Time(now.Add(-10 * time.Minute)), Average: aws.Float64(12.5)},
			{Timestamp: aws.Time(now.Add(-5 * time.Minute)), Average: aws.Float64(42.25)},
			{Timestamp: aws.Time(now.Add(-15 * time.Minute)), Average: aws.Float64(99)},
		}}, nil
	}}

	v, err := NewClientWithAPIs(nil, cw, nil).AverageCPUUtilization(context.Background(), "prod", "api", start, now)
	require.NoError(t, err)
	assert.Equal(t, 42.25, v)
}

func TestAverageCPUUtilizationNoDatapoints(t *testing.T) {
	cw := &fakeCloudWatch{fn: func(*cloudwatch.GetMetricStatisticsInput) (*cloudwatch.GetMetricStatisticsOutput, error) {
		return &cloudwatch.GetMetricStatisticsOutput{}, nil
	}}
	v, err := NewClientWithAPIs(nil, cw, nil).AverageCPUUtilization(context.Background(), "prod", "api", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestPrimaryFallback(t *testing.T) {
	var nilSvc *Service
	_, ok := nilSvc.Primary()
	assert.False(t, ok)

	svc := &Service{Deployments: []Deployment{{ID: "a", Status: "ACTIVE"}}}
	d, ok := svc.Primary()
	require.True(t, ok)
	assert.Equal(t, "a", d.ID)
}
