package classification

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Label is a class of a classification dataset.
//
// A Label decoded from a bare id (see LabelRef) carries only its Id and
// reports IsReference() == true until it is resolved against the labels of
// the owning dataset.
type Label struct {
	Id         int    `json:"id"`
	ClassIndex int    `json:"class_index"`
	ClassLabel string `json:"class_label"`
	Dataset    int    `json:"dataset"`

	reference bool
}

// RefLabel returns an unresolved label which knows only its id.
func RefLabel(id int) *Label {
	return &Label{Id: id, reference: true}
}

// IsReference reports whether the label is a bare id not resolved yet.
func (l *Label) IsReference() bool {
	return l != nil && l.reference
}

func (l *Label) Equal(o *Label) bool {
	if l == nil || o == nil {
		return l == nil && o == nil
	}
	return l.Id == o.Id &&
		l.ClassIndex == o.ClassIndex &&
		l.ClassLabel == o.ClassLabel &&
		l.Dataset == o.Dataset &&
		l.reference == o.reference
}

func (l *Label) String() string {
	if l == nil {
		return "(unlabeled)"
	}
	if l.reference {
		return fmt.Sprintf("label#%d", l.Id)
	}
	return fmt.Sprintf("%s (#%d, index %d)", l.ClassLabel, l.Id, l.ClassIndex)
}

// decodeLabelRef decodes a label field which may be null, a bare id or an
// embedded object.
func decodeLabelRef(raw json.RawMessage) (*Label, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '{' {
		l := new(Label)
		if err := json.Unmarshal(raw, l); err != nil {
			return nil, err
		}
		return l, nil
	}

	var id int
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("label should be null, id or object: %w", err)
	}
	return RefLabel(id), nil
}

// LabelIndex looks labels up by id.
type LabelIndex map[int]*Label

func IndexLabels(labels []*Label) LabelIndex {
	idx := make(LabelIndex, len(labels))
	for _, l := range labels {
		if l == nil {
			continue
		}
		idx[l.Id] = l
	}
	return idx
}

// Resolve returns the indexed label having the same id as l.
//
// When l is not indexed, l itself is returned (possibly still a reference).
func (idx LabelIndex) Resolve(l *Label) *Label {
	if l == nil {
		return nil
	}
	if found, ok := idx[l.Id]; ok {
		return found
	}
	return l
}
