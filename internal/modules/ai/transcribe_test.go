package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTranscriber returns canned results keyed by call index.
type fakeTranscriber struct {
	results []*TranscriptionResult
	errAt   int
	calls   int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (*TranscriptionResult, error) {
	idx := f.calls
	f.calls++
	if f.errAt > 0 && idx+1 == f.errAt {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return f.results[idx], nil
}

func TestTranscribeChunksOffsetsSegments(t *testing.T) {
	fake := &fakeTranscriber{results: []*TranscriptionResult{
		{
			Text: "first part",
			Segments: []Segment{
				{Start: 0, End: 4, Text: "first"},
				{Start: 4, End: 10, Text: "part"},
			},
		},
		{
			Text: "second part",
			Segments: []Segment{
				{Start: 0, End: 3, Text: "second"},
				{Start: 3, End: 7, Text: "part"},
			},
		},
	}}

	res, err := TranscribeChunks(context.Background(), fake, [][]byte{{1}, {2}}, "en")
	require.NoError(t, err)

	assert.Equal(t, "first part second part", res.Text)
	require.Len(t, res.Segments, 4)

	// Second chunk's segments shift by the first chunk's max end (10s).
	assert.Equal(t, 10.0, res.Segments[2].Start)
	assert.Equal(t, 13.0, res.Segments[2].End)
	assert.Equal(t, 13.0, res.Segments[3].Start)
	assert.Equal(t, 17.0, res.Segments[3].End)
}

func TestTranscribeChunksPropagatesErrors(t *testing.T) {
	fake := &fakeTranscriber{
		results: []*TranscriptionResult{{Text: "ok"}, nil},
		errAt:   2,
	}

	_, err := TranscribeChunks(context.Background(), fake, [][]byte{{1}, {2}}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 1")
}

func TestTranscribeChunksSingleChunk(t *testing.T) {
	fake := &fakeTranscriber{results: []*TranscriptionResult{
		{Text: "only", Segments: []Segment{{Start: 0, End: 2, Text: "only"}}},
	}}

	res, err := TranscribeChunks(context.Background(), fake, [][]byte{{1}}, "")
	require.NoError(t, err)
	assert.Equal(t, "only", res.Text)
	assert.Equal(t, 0.0, res.Segments[0].Start)
}

func TestChunkAudio(t *testing.T) {
	audio := make([]byte, 250)

	chunks := chunkAudio(audio, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)

	small := chunkAudio(make([]byte, 10), 100)
	require.Len(t, small, 1)
	assert.Len(t, small[0], 10)
}

func TestWhisperRejectsOversizedPayload(t *testing.T) {
	w := newWhisperTranscriber(nil)

	_, err := w.Transcribe(context.Background(), make([]byte, MaxTranscribeBytes+1), "")
	assert.ErrorIs(t, err, ErrAudioTooLarge)
}

func TestWhisperRejectsEmptyPayload(t *testing.T) {
	w := newWhisperTranscriber(nil)

	_, err := w.Transcribe(context.Background(), nil, "")
	assert.Error(t, err)
}
