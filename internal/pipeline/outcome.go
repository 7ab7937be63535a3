package pipeline

// Outcome is the terminal status of one file's trip through the pipeline.
// Expected skips are outcomes, not errors; only unexpected collaborator
// failures map to OutcomeFileError.
type Outcome string

const (
	// OutcomeCompleted: speech was detected and every enabled stage ran;
	// includes runs where re-encoding fell back to the canonical waveform.
	OutcomeCompleted Outcome = "speech-detected-and-completed"

	// OutcomeNoSpeech: recognition produced no text; translation and
	// synthesis were skipped entirely.
	OutcomeNoSpeech Outcome = "no-speech-skipped"

	// OutcomeEmptyTranslation: the pivot translation came back empty;
	// synthesis was skipped.
	OutcomeEmptyTranslation Outcome = "empty-translation-skipped"

	// OutcomeSynthesisFailed: the synthesis call failed after translation
	// succeeded; no audio is produced for the file and the batch continues.
	OutcomeSynthesisFailed Outcome = "synthesis-failed-text-only"

	// OutcomeFileError: an unexpected collaborator failure; the file is
	// abandoned and the batch continues.
	OutcomeFileError Outcome = "file-error"
)
