package ai

import "github.com/substratehq/depot/core"

// Category-specific instruction prompts for the Summarizer.
const (
	// PhotoPrompt asks for a textual description of an image.
	PhotoPrompt = "You are a professional photographer and you have taken this photo. " +
		"Please write a description of the photo in a few sentences."

	// AudioPrompt asks for a detailed transcription of an audio file.
	AudioPrompt = "You are a professional transcriber, and you have been asked to transcribe this audio file. " +
		"Please write the transcription in as much detail as possible."

	// VideoPrompt asks for a detailed transcription of a video file.
	VideoPrompt = "You are a professional transcriber, and you have been asked to transcribe this video file. " +
		"Please write the transcription in as much detail as possible."
)

// PromptFor returns the summarization prompt for a content category.
// Categories whose text derives without a model (text, PDF) return "".
func PromptFor(category core.Category) string {
	switch category {
	case core.CategoryPhoto:
		return PhotoPrompt
	case core.CategoryAudio:
		return AudioPrompt
	case core.CategoryVideo:
		return VideoPrompt
	}
	return ""
}
