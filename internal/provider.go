package internal

import (
	"context"
)

type Calendar interface {
	Events(_ context.Context, _ Window) ([]*Event, error)
}

type Browser interface {
	Open(url string) error
}
