package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/voxline-media/voxline/internal/model"
)

// ContentStore is the slice of the persistence layer the remote player
// needs.
type ContentStore interface {
	GetContentByID(contentID int) (model.Content, error)
}

// InsertPublisher pushes one insert command to the on-premises audio device.
type InsertPublisher func(sessionID int, message []byte) error

type insertCommand struct {
	ContentID int             `json:"content_id"`
	URL       string          `json:"url"`
	Mode      model.AudioMode `json:"mode"`
}

// RemotePlayer drives the premises audio device over the message broker.
// The command itself is fire-and-forget; Play holds the caller for the
// content's catalogued duration so the lock stays held while the insertion
// is audible.
type RemotePlayer struct {
	sessionID int
	store     ContentStore
	publish   InsertPublisher
}

func NewRemotePlayer(sessionID int, store ContentStore, publish InsertPublisher) *RemotePlayer {
	return &RemotePlayer{sessionID: sessionID, store: store, publish: publish}
}

func (p *RemotePlayer) EstimateDuration(ctx context.Context, contentID int) (time.Duration, error) {
	content, err := p.store.GetContentByID(contentID)
	if err != nil {
		return 0, fmt.Errorf("look up content %d: %w", contentID, err)
	}
	if content.DurationSeconds <= 0 {
		return 0, fmt.Errorf("content %d has no catalogued duration", contentID)
	}
	return time.Duration(content.DurationSeconds) * time.Second, nil
}

func (p *RemotePlayer) Play(ctx context.Context, contentID int, mode model.AudioMode) error {
	content, err := p.store.GetContentByID(contentID)
	if err != nil {
		return fmt.Errorf("look up content %d: %w", contentID, err)
	}

	payload, err := json.Marshal(insertCommand{
		ContentID: contentID,
		URL:       content.URL,
		Mode:      mode,
	})
	if err != nil {
		return err
	}
	if err := p.publish(p.sessionID, payload); err != nil {
		return fmt.Errorf("publish insert command: %w", err)
	}

	hold := time.Duration(content.DurationSeconds) * time.Second
	if hold <= 0 {
		hold = time.Minute
	}
	select {
	case <-time.After(hold):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Player = (*RemotePlayer)(nil)
