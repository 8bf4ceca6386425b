// Package directory keeps the storage read model in step with the lobby and
// match tables by applying their change events in order.
package directory

import (
	"context"
	"log/slog"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/storage"
)

// DefaultBufferSize is the number of events queued before new ones are dropped
const DefaultBufferSize = 256

// Publisher applies table events to storage on a single goroutine
type Publisher struct {
	storage storage.Storage
	logger  *slog.Logger
	events  chan model.Event
	done    chan struct{}
}

// NewPublisher creates a Publisher. Events are queued until Run is called.
func NewPublisher(storage storage.Storage, bufferSize int, logger *slog.Logger) *Publisher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Publisher{
		storage: storage,
		logger:  logger.With(slog.String("component", "directory")),
		events:  make(chan model.Event, bufferSize),
		done:    make(chan struct{}),
	}
}

// Publish queues an event without blocking. A full queue drops the event.
func (p *Publisher) Publish(event model.Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("directory event dropped - buffer full",
			slog.String("type", string(event.Type)),
			slog.String("game_id", string(event.GameID)))
	}
}

// Run applies events until ctx is cancelled, then drains what is already queued
func (p *Publisher) Run(ctx context.Context) {
	defer close(p.done)
	p.logger.Info("directory publisher started")

	// Storage writes are not cancelled with ctx
	applyCtx := context.WithoutCancel(ctx)
	for {
		select {
		case event := <-p.events:
			p.apply(applyCtx, event)
		case <-ctx.Done():
			p.drain(applyCtx)
			p.logger.Info("directory publisher stopped")
			return
		}
	}
}

// Done is closed once Run has returned
func (p *Publisher) Done() <-chan struct{} {
	return p.done
}

func (p *Publisher) drain(ctx context.Context) {
	for {
		select {
		case event := <-p.events:
			p.apply(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) apply(ctx context.Context, event model.Event) {
	var err error
	switch event.Type {
	case model.EventLobbyOpened:
		payload, _ := event.Payload.(model.LobbyOpenedPayload)
		err = p.storage.SaveLobby(ctx, &model.LobbySummary{
			ID:          event.GameID,
			HasPassword: payload.HasPassword,
			CreatedAt:   event.Timestamp,
		})

	case model.EventLobbyClosed:
		err = p.storage.DeleteLobby(ctx, event.GameID)

	case model.EventMatchStarted:
		err = p.storage.SaveMatch(ctx, &model.MatchSummary{
			ID:        event.GameID,
			StartedAt: event.Timestamp,
			UpdatedAt: event.Timestamp,
		})

	case model.EventMatchScored:
		payload, _ := event.Payload.(model.MatchScoredPayload)
		var summary *model.MatchSummary
		summary, err = p.storage.GetMatch(ctx, event.GameID)
		if err == nil {
			summary.Score = payload.Score
			summary.UpdatedAt = event.Timestamp
			err = p.storage.SaveMatch(ctx, summary)
		}

	case model.EventMatchEnded:
		err = p.storage.DeleteMatch(ctx, event.GameID)

	default:
		p.logger.Warn("unknown directory event", slog.String("type", string(event.Type)))
		return
	}

	if err != nil {
		p.logger.Error("failed to apply directory event",
			slog.String("type", string(event.Type)),
			slog.String("game_id", string(event.GameID)),
			slog.String("error", err.Error()))
	}
}
