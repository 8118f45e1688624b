package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Pump, error)
	Get(ctx context.Context, id snowflake.ID) (*Pump, error)
	GetByPrefix(ctx context.Context, prefix string) (*Pump, error)
	List(ctx context.Context) ([]Pump, error)
	SetStatus(ctx context.Context, id snowflake.ID, status Status) (*Pump, error)
}

type CreateRequest struct {
	Prefix  string `json:"prefix"`
	OwnerID string `json:"owner_id"`
	Model   string `json:"model"`
	Status  Status `json:"status"`
}

type SetStatusRequest struct {
	Status Status `json:"status"`
}

var (
	ErrInvalidID     = errors.New("invalid_pump_id")
	ErrInvalidPrefix = errors.New("invalid_prefix")
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrPrefixTaken   = errors.New("prefix_taken")
	ErrNotFound      = errors.New("pump_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(value)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
