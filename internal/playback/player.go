package playback

import (
	"context"
	"time"

	"github.com/voxline-media/voxline/internal/model"
)

// Player is the audio subsystem collaborator. Decoding, mixing and volume
// handling live behind it; this package only decides what plays and when.
type Player interface {
	// EstimateDuration returns the expected playing time of one content item.
	EstimateDuration(ctx context.Context, contentID int) (time.Duration, error)
	// Play renders one content item over (or instead of) the background
	// stream according to mode, returning once playback finished or failed.
	Play(ctx context.Context, contentID int, mode model.AudioMode) error
}
