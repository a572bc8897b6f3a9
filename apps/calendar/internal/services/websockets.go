package services

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	wstools "github.com/xdoubleu/essentia/v2/pkg/communication/wstools"
	"github.com/xdoubleu/essentia/v2/pkg/threading"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
)

// ChangesTopic tells subscribers to reload after any event changed. The
// message names no event because every subscriber receives it.
const ChangesTopic = "changes"

const (
	actionSubscribed = "subscribed"
	actionReload     = "reload"
)

type WebSocketService struct {
	allowedOrigins []string
	handler        *wstools.WebSocketHandler[dtos.SubscribeMessageDto]
	jobQueue       *threading.JobQueue
	topics         map[string]*wstools.Topic
}

func NewWebSocketService(
	logger *slog.Logger,
	allowedOrigins []string,
	jobQueue *threading.JobQueue,
) *WebSocketService {
	service := WebSocketService{
		allowedOrigins: allowedOrigins,
		handler:        nil,
		jobQueue:       jobQueue,
		topics:         make(map[string]*wstools.Topic),
	}

	handler := wstools.CreateWebSocketHandler[dtos.SubscribeMessageDto](
		logger,
		1,
		100, //nolint:mnd //no magic number
	)

	service.handler = &handler

	return &service
}

func (service *WebSocketService) Handler() http.HandlerFunc {
	return service.handler.Handler()
}

// UpdateState is the state callback of the job queue.
func (service *WebSocketService) UpdateState(
	id string,
	isRunning bool,
	lastRunTime *time.Time,
) {
	topic, ok := service.topics[id]
	if !ok {
		return
	}

	topic.EnqueueEvent(dtos.StateMessageDto{
		IsRefreshing: isRunning,
		LastRefresh:  lastRunTime,
	})
}

// NotifyChanged asks subscribers of the changes topic to reload.
func (service *WebSocketService) NotifyChanged() {
	topic, ok := service.topics[ChangesTopic]
	if !ok {
		return
	}

	topic.EnqueueEvent(dtos.ChangeMessageDto{Action: actionReload})
}

// RegisterTopics adds a state topic per job id and the changes topic.
func (service *WebSocketService) RegisterTopics(jobIDs []string) {
	for _, topic := range jobIDs {
		service.addTopic(
			topic,
			func(_ context.Context, tp *wstools.Topic) (any, error) {
				return service.fetchState(tp), nil
			},
		)
	}

	service.addTopic(
		ChangesTopic,
		func(_ context.Context, _ *wstools.Topic) (any, error) {
			return dtos.ChangeMessageDto{Action: actionSubscribed}, nil
		},
	)
}

func (service *WebSocketService) addTopic(
	name string,
	onSubscribe func(ctx context.Context, topic *wstools.Topic) (any, error),
) {
	if _, ok := service.topics[name]; ok {
		return
	}

	registeredTopic, err := service.handler.AddTopic(
		name,
		service.allowedOrigins,
		onSubscribe,
	)
	if err != nil {
		panic(err)
	}
	service.topics[name] = registeredTopic
}

func (service *WebSocketService) fetchState(topic *wstools.Topic) dtos.StateMessageDto {
	isRefreshing, lastRefresh := service.jobQueue.FetchState(topic.Name)

	return dtos.StateMessageDto{
		IsRefreshing: isRefreshing,
		LastRefresh:  lastRefresh,
	}
}
