package grid

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/profile"
	"github.com/midbel/sheetcalc/value"
)

// Reader gives the values of a zone of a document.
type Reader interface {
	Values(layout.Range) ([][]value.ScalarValue, error)
}

// Artifact is something built from the values of a document that is not
// recomputed with the formulas: it is marked out of date when its sources
// change and refreshed when read.
type Artifact interface {
	Sources() []layout.Range
	Refresh(Reader) error
	Rebase(func(layout.Range) layout.Range)
}

type artifactState struct {
	artifact Artifact
	stale    bool
	// one of the sources was removed by a structural edit
	deleted bool
}

func (d *Document) AddArtifact(a Artifact) (uuid.UUID, error) {
	for _, rg := range a.Sources() {
		if _, err := d.Sheet(rg.Starts.Sheet); err != nil {
			return uuid.Nil, err
		}
	}
	a.Rebase(func(rg layout.Range) layout.Range {
		sh, _ := d.Sheet(rg.Starts.Sheet)
		rg.Starts.Sheet, rg.Ends.Sheet = sh.name, sh.name
		return rg
	})
	id := uuid.New()
	d.artifacts[id] = &artifactState{
		artifact: a,
		stale:    true,
	}
	return id, nil
}

// Artifact returns an artifact, refreshed first if it is out of date.
func (d *Document) Artifact(id uuid.UUID) (Artifact, error) {
	s, ok := d.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", id, ErrFound)
	}
	if s.deleted {
		return nil, fmt.Errorf("artifact %s: %w", id, ErrDeleted)
	}
	if s.stale {
		if err := s.artifact.Refresh(d); err != nil {
			return nil, err
		}
		s.stale = false
		d.logger.Debug("artifact refreshed", "id", id.String())
	}
	return s.artifact, nil
}

func (d *Document) OutOfDate(id uuid.UUID) bool {
	s, ok := d.artifacts[id]
	return ok && s.stale
}

func (d *Document) RemoveArtifact(id uuid.UUID) {
	delete(d.artifacts, id)
}

// Values returns the values of a zone, line by line.
func (d *Document) Values(rg layout.Range) ([][]value.ScalarValue, error) {
	sh, err := d.Sheet(rg.Starts.Sheet)
	if err != nil {
		return nil, err
	}
	if !sh.Size.Contains(rg.Starts) || !sh.Size.Contains(rg.Ends) {
		return nil, fmt.Errorf("%s: %w", rg, ErrBounds)
	}
	var rows [][]value.ScalarValue
	for line := rg.Starts.Line; line <= rg.Ends.Line; line++ {
		var row []value.ScalarValue
		for col := rg.Starts.Column; col <= rg.Ends.Column; col++ {
			row = append(row, sh.Value(layout.Position{Line: line, Column: col}))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (d *Document) outdate(touched *profile.Tracker) {
	if touched.Empty() {
		return
	}
	for id, s := range d.artifacts {
		if s.stale {
			continue
		}
		for _, rg := range s.artifact.Sources() {
			if touched.Intersects(rg) {
				s.stale = true
				d.logger.Debug("artifact out of date", "id", id.String())
				break
			}
		}
	}
}
