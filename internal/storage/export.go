package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/systree/internal/systree"
)

type ExportData struct {
	Run    RunMetadata         `json:"run"`
	Bodies map[string][]Sample `json:"bodies"`
}

// Sample is one exported report for a single owner.
type Sample struct {
	Time int64   `json:"t"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
}

func NewExport(meta RunMetadata, reports []systree.Report) ExportData {
	data := ExportData{Run: meta, Bodies: make(map[string][]Sample)}
	for _, owner := range Owners(reports) {
		for _, r := range Trajectory(reports, owner) {
			b := r.Body
			data.Bodies[owner] = append(data.Bodies[owner], Sample{
				Time: r.Time,
				X:    b.Position.X,
				Y:    b.Position.Y,
				VX:   b.Velocity.X,
				VY:   b.Velocity.Y,
			})
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
