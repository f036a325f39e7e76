package workers

import (
	"context"
	"log"

	"challenge-service/services"
)

// ModerationWorker is the single consumer behind both moderation trigger
// paths (post created, media-uploaded webhook). Producers enqueue post ids;
// the consumer runs the idempotent scan for each. A full queue drops the id
// and the post stays unscanned, matching the pipeline's no-retry semantics.
type ModerationWorker struct {
	svc   *services.ModerationService
	queue chan string
}

func NewModerationWorker(svc *services.ModerationService, queueSize int) *ModerationWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &ModerationWorker{
		svc:   svc,
		queue: make(chan string, queueSize),
	}
}

// Enqueue hands a post to the pipeline without blocking the caller.
func (w *ModerationWorker) Enqueue(postID string) {
	select {
	case w.queue <- postID:
	default:
		log.Printf("❌ [Moderation] queue full, dropping post %s (stays unscanned)", postID)
	}
}

// Run consumes until ctx is cancelled.
func (w *ModerationWorker) Run(ctx context.Context) {
	log.Println("Starting moderation worker...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Moderation worker stopped.")
			return
		case postID := <-w.queue:
			if err := w.svc.Scan(ctx, postID); err != nil {
				log.Printf("❌ [Moderation] scan failed for post %s: %v", postID, err)
			}
		}
	}
}
