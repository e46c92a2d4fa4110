package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/splatview/gaussian"
)

// Model is one loaded model as the export pipeline sees it: a display
// name and the decoded points. Decoding happens in the host application;
// the pipeline never touches the source file again.
type Model struct {
	// FileName is the name the model was loaded under; it names the
	// archive entry and the suggested save path.
	FileName string

	// Points are the decoded Gaussian points.
	Points []gaussian.Point
}

// WriteModels serializes the selected models to w.
//
// If exactly one model is marked for export its points are written
// directly in the native point format, with that model's Edit and Mask
// flags deciding whether the downloaded edit overrides and mask bits are
// baked in. With more than one marked model, each selected model becomes
// a named Deflate entry in a single zip archive; models whose Export
// flag is false are skipped entirely.
//
// Any per-model write failure aborts the whole operation with an error.
// Callers serialize into memory first so a failed archive is never
// committed to the destination.
func WriteModels(w io.Writer, models []Model, settings []Settings, edits [][]gaussian.EditPod, masks [][]uint32) error {
	if len(settings) != len(models) {
		return fmt.Errorf("export: %d settings for %d models", len(settings), len(models))
	}

	switch n := countExported(settings); n {
	case 0:
		return fmt.Errorf("export: no model marked for export")
	case 1:
		for i, m := range models {
			if settings[i].Export {
				return writeOne(w, m, settings[i], edits, masks, i)
			}
		}
	}

	zw := zip.NewWriter(w)
	for i, m := range models {
		if !settings[i].Export {
			continue
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   m.FileName,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("export: create archive entry %q: %w", m.FileName, err)
		}
		if err := writeOne(entry, m, settings[i], edits, masks, i); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: finish archive: %w", err)
	}
	return nil
}

// writeOne serializes a single model, honoring its Edit and Mask flags.
func writeOne(w io.Writer, m Model, s Settings, edits [][]gaussian.EditPod, masks [][]uint32, i int) error {
	var e []gaussian.EditPod
	if s.Edit && i < len(edits) {
		e = edits[i]
	}
	var mk []uint32
	if s.Mask && i < len(masks) {
		mk = masks[i]
	}
	if err := gaussian.WritePLY(w, m.Points, e, mk); err != nil {
		return fmt.Errorf("export: model %q: %w", m.FileName, err)
	}
	return nil
}

// SuggestedFileName returns the default save name: the model's own name
// (with a .ply extension ensured) when exactly one model is exported,
// "models.zip" otherwise.
func SuggestedFileName(models []Model, settings []Settings) string {
	if countExported(settings) == 1 {
		for i, m := range models {
			if !settings[i].Export {
				continue
			}
			if strings.HasSuffix(strings.ToLower(m.FileName), ".ply") {
				return m.FileName
			}
			return m.FileName + ".ply"
		}
	}
	return "models.zip"
}
