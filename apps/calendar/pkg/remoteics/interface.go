package remoteics

import "context"

type Client interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}
