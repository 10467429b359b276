package port

import "context"

type DescriptionProviderPort interface {
	FetchDescription(ctx context.Context, address string) (string, error)
}
