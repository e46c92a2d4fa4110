package export

// Settings holds the per-model export choices shown in the confirm
// dialog.
type Settings struct {
	// Export includes the model in the output.
	Export bool

	// Edit bakes the per-point edit overrides into the written points.
	Edit bool

	// Mask drops points excluded by the evaluated mask.
	Mask bool
}

// DefaultSettings returns one all-enabled Settings per model, the dialog
// default.
func DefaultSettings(count int) []Settings {
	s := make([]Settings, count)
	for i := range s {
		s[i] = Settings{Export: true, Edit: true, Mask: true}
	}
	return s
}

// countExported returns how many models are marked for export.
func countExported(settings []Settings) int {
	n := 0
	for _, s := range settings {
		if s.Export {
			n++
		}
	}
	return n
}
