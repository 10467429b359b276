package usecases_port

import "context"

type ImportRentTablePort interface {
	Execute(ctx context.Context) (int64, error)
}
