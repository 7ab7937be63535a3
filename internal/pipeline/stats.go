package pipeline

// RunStats tracks aggregate per-outcome counters across a batch run.
type RunStats struct {
	Total   int
	Current int

	Completed        int
	NoSpeech         int
	EmptyTranslation int
	SynthesisFailed  int
	Failed           int
}

// record tallies one file's terminal outcome.
func (s *RunStats) record(o Outcome) {
	switch o {
	case OutcomeCompleted:
		s.Completed++
	case OutcomeNoSpeech:
		s.NoSpeech++
	case OutcomeEmptyTranslation:
		s.EmptyTranslation++
	case OutcomeSynthesisFailed:
		s.SynthesisFailed++
	case OutcomeFileError:
		s.Failed++
	}
}

// Attempted returns how many files reached a terminal state.
func (s *RunStats) Attempted() int {
	return s.Completed + s.NoSpeech + s.EmptyTranslation + s.SynthesisFailed + s.Failed
}
