// Package video implements the video-source Ingester of spec.md §4.8 phase
// 1: transcribe the recording via capability.Transcriber, then caption a
// sparse set of representative frames via capability.VisionLLM so screen
// extraction has visual context alongside the spoken-word transcript.
package video

import (
	"context"
	"fmt"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

// Ingester transcribes a video/audio reference and enriches it with frame
// captions.
type Ingester struct {
	transcriber capability.Transcriber
	vision      capability.VisionLLM
	frameRefs   func(ctx context.Context, mediaRef string) ([]string, error)
}

// New constructs a video Ingester. frameRefs resolves a media reference to
// a sparse set of representative frame image refs for captioning; pass nil
// to skip frame captioning and rely on transcript text alone.
func New(transcriber capability.Transcriber, vision capability.VisionLLM, frameRefs func(ctx context.Context, mediaRef string) ([]string, error)) *Ingester {
	return &Ingester{transcriber: transcriber, vision: vision, frameRefs: frameRefs}
}

var _ ingest.Ingester = (*Ingester)(nil)

const frameCaptionPrompt = "Describe the on-screen UI state: visible screen name, key controls, and any error or success indicators."

// Ingest implements ingest.Ingester for src.Type == "video".
func (i *Ingester) Ingest(ctx context.Context, src ingest.Source) ([]model.ContentChunk, error) {
	transcript, err := i.transcriber.Transcribe(ctx, src.Ref)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", src.Ref, err)
	}

	text := transcript
	if i.vision != nil && i.frameRefs != nil {
		captions, err := i.captionFrames(ctx, src.Ref)
		if err != nil {
			return nil, err
		}
		for _, c := range captions {
			text += "\n\n[frame]\n" + c
		}
	}

	return ingest.ChunkText(src.KnowledgeID, "video", src.Ref, text), nil
}

func (i *Ingester) captionFrames(ctx context.Context, mediaRef string) ([]string, error) {
	frames, err := i.frameRefs(ctx, mediaRef)
	if err != nil {
		return nil, fmt.Errorf("resolve frame refs for %s: %w", mediaRef, err)
	}
	captions := make([]string, 0, len(frames))
	for _, frame := range frames {
		caption, err := i.vision.CaptionFrame(ctx, frame, frameCaptionPrompt)
		if err != nil {
			return nil, fmt.Errorf("caption frame %s: %w", frame, err)
		}
		captions = append(captions, caption)
	}
	return captions, nil
}
