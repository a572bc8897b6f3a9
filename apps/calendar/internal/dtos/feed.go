package dtos

import (
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/validate"
	"planner.xdoubleu.com/apps/calendar/internal/models"
)

type CreateFeedDto struct {
	Name string `json:"name" schema:"name"`
}

func (dto *CreateFeedDto) Validate() (bool, map[string]string) {
	v := validate.New()

	validate.Check(v, "name", dto.Name, validate.IsNotEmpty)

	return v.Valid(), v.Errors()
}

type FeedDto struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFeedDto exposes the subscription url of feed below baseURL.
func NewFeedDto(feed models.Feed, baseURL string) FeedDto {
	return FeedDto{
		Token:     feed.Token,
		Name:      feed.Name,
		URL:       baseURL + "/" + feed.Token + ".ics",
		CreatedAt: feed.CreatedAt,
	}
}

func NewFeedDtos(feeds []models.Feed, baseURL string) []FeedDto {
	result := make([]FeedDto, 0, len(feeds))
	for _, feed := range feeds {
		result = append(result, NewFeedDto(feed, baseURL))
	}
	return result
}
