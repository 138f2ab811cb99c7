package luci

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const exportDateFormat = "2006-01-02 15:04:05"

// ExportConfig configures the exporting of a plan.
type ExportConfig struct {
	Filename  string
	OutputDir string
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == ""
}

// path returns the file name of one export kind.
func (c ExportConfig) path(kind, ext string) string {
	name := fmt.Sprintf("%s-%s", kind, c.Filename)
	if c.Timestamp {
		t := time.Now()
		name += fmt.Sprintf("-%d-%02d-%02dT%02d.%02d.%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	dir := c.OutputDir
	if dir == "" {
		dir = luciConfig().OutputDir
	}
	return filepath.Join(dir, name+"."+ext)
}

// WriteVisibilityCSV writes one line per sample time and one column per
// object. Elevations below the horizon are left empty.
func WriteVisibilityCSV(w io.Writer, plot *VisibilityPlot) error {
	fmt.Fprintf(w, "# Creation date (UTC): %s\n", time.Now().UTC().Format(exportDateFormat))
	fmt.Fprintf(w, "# Elevations in degrees; empty when below the horizon at any of:")
	for _, s := range plot.Sites {
		fmt.Fprintf(w, " %s", s.Name)
	}
	fmt.Fprintln(w)
	for _, sw := range plot.Shading {
		fmt.Fprintf(w, "# Sun shading (UTC): %s to %s\n", sw.Start.Format(exportDateFormat), sw.End.Format(exportDateFormat))
	}
	all := append(append([]Series{}, plot.Targets...), plot.Bodies...)
	cw := csv.NewWriter(w)
	hdr := []string{"time"}
	for _, s := range all {
		hdr = append(hdr, s.Name)
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	if len(all) > 0 {
		for i, smp := range all[0].Samples {
			record := []string{smp.Time.UTC().Format(exportDateFormat)}
			for _, s := range all {
				record = append(record, s.Samples[i].Elevation.String())
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeparationCSV writes one line per target with its distances in degrees.
func WriteSeparationCSV(w io.Writer, tab *Table) error {
	fmt.Fprintf(w, "# Creation date (UTC): %s\n", time.Now().UTC().Format(exportDateFormat))
	fmt.Fprintf(w, "# Distances in degrees on %s, solar system bodies sampled every %s\n", tab.Date.Format("2006-01-02"), SeparationInterval)
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Sources"}, SeparationColumns...)); err != nil {
		return err
	}
	for _, r := range tab.Rows {
		if err := cw.Write(append([]string{r.Target}, r.Strings()...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonLayout is the JSON form of a beam layout.
type jsonLayout struct {
	Circles  []jsonCircle `json:"circles"`
	Labels   []jsonLabel  `json:"labels"`
	RARange  [2]float64   `json:"raRange"`
	DecRange [2]float64   `json:"decRange"`
	Wrapped  bool         `json:"wrapped"`
}

type jsonCircle struct {
	Label    string  `json:"label"`
	X0       float64 `json:"x0"`
	X1       float64 `json:"x1"`
	Y0       float64 `json:"y0"`
	Y1       float64 `json:"y1"`
	Tile     bool    `json:"tile,omitempty"`
	Mirrored bool    `json:"mirrored,omitempty"`
}

type jsonLabel struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// WriteLayoutJSON writes the layout with each circle as its bounding box.
func WriteLayoutJSON(w io.Writer, l *Layout) error {
	out := jsonLayout{RARange: l.RARange, DecRange: l.DecRange, Wrapped: l.Wrapped}
	for _, c := range l.Circles {
		x0, x1, y0, y1 := c.Bounds()
		out.Circles = append(out.Circles, jsonCircle{c.Label, x0, x1, y0, y1, c.Tile, c.Mirrored})
	}
	for _, lbl := range l.Labels {
		out.Labels = append(out.Labels, jsonLabel{lbl.Text, lbl.RA, lbl.Dec})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// Export writes the target products of a result and returns the files created.
func (c ExportConfig) Export(res *Result) ([]string, error) {
	if c.IsUseless() || res.Visibility == nil {
		return nil, nil
	}
	var files []string
	steps := []struct {
		path  string
		write func(io.Writer) error
	}{
		{c.path("visibility", "csv"), func(w io.Writer) error { return WriteVisibilityCSV(w, res.Visibility) }},
		{c.path("separation", "csv"), func(w io.Writer) error { return WriteSeparationCSV(w, res.Separations) }},
		{c.path("beams", "json"), func(w io.Writer) error { return WriteLayoutJSON(w, res.Beams) }},
	}
	for _, st := range steps {
		if err := writeFile(st.path, st.write); err != nil {
			return files, err
		}
		files = append(files, st.path)
	}
	return files, nil
}
