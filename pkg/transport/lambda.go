package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// DefaultRegion is used when a subscription does not configure one.
const DefaultRegion = "us-east-1"

// LambdaClient defines the subset of the AWS Lambda API used by the
// transport. Satisfied by *lambda.Client; mockable in tests.
type LambdaClient interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// ClientFactory builds a Lambda client for a region/endpoint pair.
type ClientFactory func(ctx context.Context, region, endpoint string) (LambdaClient, error)

// Lambda invokes subscriber functions with the payload and the headers an
// HTTP subscriber would have received. Clients are built lazily, one per
// region/endpoint pair, and reused across invocations.
type Lambda struct {
	defaultRegion string
	factory       ClientFactory

	mu      sync.Mutex
	clients map[string]LambdaClient
}

// LambdaOption configures the Lambda transport.
type LambdaOption func(*Lambda)

// WithDefaultRegion overrides the region used by subscriptions that leave
// theirs unset.
func WithDefaultRegion(region string) LambdaOption {
	return func(t *Lambda) {
		if region != "" {
			t.defaultRegion = region
		}
	}
}

// WithStaticCredentials pins AWS credentials instead of relying on the
// default chain. Mostly useful against Lambda-compatible local stacks.
func WithStaticCredentials(accessKeyID, secretKey string) LambdaOption {
	return func(t *Lambda) {
		t.factory = func(ctx context.Context, region, endpoint string) (LambdaClient, error) {
			cfg, err := awsconfig.LoadDefaultConfig(ctx,
				awsconfig.WithRegion(region),
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, "")),
			)
			if err != nil {
				return nil, err
			}
			return newClientFromConfig(cfg, endpoint), nil
		}
	}
}

// WithClientFactory replaces client construction entirely. Tests use this to
// inject mocks.
func WithClientFactory(f ClientFactory) LambdaOption {
	return func(t *Lambda) {
		if f != nil {
			t.factory = f
		}
	}
}

// NewLambda creates a Lambda transport.
func NewLambda(opts ...LambdaOption) *Lambda {
	t := &Lambda{
		defaultRegion: DefaultRegion,
		clients:       make(map[string]LambdaClient),
	}
	t.factory = func(ctx context.Context, region, endpoint string) (LambdaClient, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, err
		}
		return newClientFromConfig(cfg, endpoint), nil
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func newClientFromConfig(cfg aws.Config, endpoint string) *lambda.Client {
	return lambda.NewFromConfig(cfg, func(o *lambda.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// invocationBody is what the subscriber function receives: the same envelope
// and headers an HTTP subscriber would get, wrapped in one JSON object.
type invocationBody struct {
	Payload json.RawMessage   `json:"payload"`
	Headers map[string]string `json:"headers"`
}

// Deliver invokes the subscription's function with {payload, headers}. The
// invocation mode follows the subscription: fire-and-forget ("Event") when
// Lambda.Async is set, request-response otherwise. In request-response mode
// an in-function error fails the attempt.
func (t *Lambda) Deliver(ctx context.Context, sub hook.Subscription, body []byte, headers map[string]string) error {
	if sub.LambdaFunction == "" {
		return ErrNoTarget
	}

	settings := sub.Lambda
	if settings == nil {
		settings = &hook.LambdaSettings{}
	}
	region := settings.Region
	if region == "" {
		region = t.defaultRegion
	}

	client, err := t.clientFor(ctx, region, settings.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvocationFailed, err)
	}

	wrapped, err := json.Marshal(invocationBody{Payload: body, Headers: headers})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvocationFailed, err)
	}

	invocationType := types.InvocationTypeRequestResponse
	if settings.Async {
		invocationType = types.InvocationTypeEvent
	}

	out, err := client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(sub.LambdaFunction),
		InvocationType: invocationType,
		Payload:        wrapped,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvocationFailed, sub.LambdaFunction, err)
	}
	if out.FunctionError != nil {
		return fmt.Errorf("%w: %s: %s", ErrInvocationFailed, sub.LambdaFunction, *out.FunctionError)
	}
	return nil
}

func (t *Lambda) clientFor(ctx context.Context, region, endpoint string) (LambdaClient, error) {
	key := region + "|" + endpoint

	t.mu.Lock()
	defer t.mu.Unlock()

	if client, ok := t.clients[key]; ok {
		return client, nil
	}
	client, err := t.factory(ctx, region, endpoint)
	if err != nil {
		return nil, err
	}
	t.clients[key] = client
	return client, nil
}
