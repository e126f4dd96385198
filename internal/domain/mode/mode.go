package mode

// Mode is the guideline confidence state chosen per request.
type Mode string

// Mode constants.
const (
	// Grounded means retrieved guidelines overlap the input and may anchor the classification.
	Grounded Mode = "grounded"
	// Fallback means retrieval is too weakly related to trust; classify with generic safe-triage behavior.
	Fallback Mode = "fallback"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Grounded || m == Fallback
}

// FromConfidence maps the best lexical overlap of the selected guidelines to a mode.
func FromConfidence(maxLexical int) Mode {
	if maxLexical <= 0 {
		return Fallback
	}
	return Grounded
}
