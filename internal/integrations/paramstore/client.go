package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSM accepts at most ten names per GetParameters call.
const maxNamesPerCall = 10

type parameterReader interface {
	GetParameters(ctx context.Context, in *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Client batch-reads SecureString settings such as the OpenAI key and the
// default model.
type Client struct {
	ssm parameterReader
}

func New(r parameterReader) (*Client, error) {
	if r == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{ssm: r}, nil
}

// GetParameters fetches the named parameters with decryption. Names SSM does
// not know are absent from the result rather than an error.
func (c *Client) GetParameters(ctx context.Context, names []string) (map[string]string, error) {
	if c == nil || c.ssm == nil {
		return nil, errors.New("paramstore: client not initialized")
	}

	var clean []string
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		clean = append(clean, n)
	}
	if len(clean) == 0 {
		return nil, errors.New("paramstore: at least one name is required")
	}

	values := make(map[string]string, len(clean))
	for start := 0; start < len(clean); start += maxNamesPerCall {
		end := min(start+maxNamesPerCall, len(clean))
		out, err := c.ssm.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          clean[start:end],
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("paramstore: get parameters %v: %w", clean[start:end], err)
		}
		if out == nil {
			continue
		}
		for _, p := range out.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			values[*p.Name] = *p.Value
		}
	}
	return values, nil
}
