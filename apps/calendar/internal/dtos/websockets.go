package dtos

import (
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/validate"
)

type SubscribeMessageDto struct {
	Subject string `json:"subject"`
}

type StateMessageDto struct {
	LastRefresh  *time.Time `json:"lastRefresh"`
	IsRefreshing bool       `json:"isRefreshing"`
}

// ChangeMessageDto is sent on the changes topic so that open week views can
// refresh.
type ChangeMessageDto struct {
	Action string `json:"action"`
}

func (dto SubscribeMessageDto) Topic() string {
	return dto.Subject
}

func (dto SubscribeMessageDto) Validate() (bool, map[string]string) {
	v := validate.New()

	validate.Check(v, "subject", dto.Subject, validate.IsNotEmpty)

	return v.Valid(), v.Errors()
}
