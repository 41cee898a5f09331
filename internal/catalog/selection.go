package catalog

import "encoding/json"

// Selection is an insertion-ordered set of movie ids.  The zero value is
// an empty selection ready to use.
type Selection struct {
	ids []string
	set map[string]struct{}
}

// NewSelection returns a selection holding ids, duplicates dropped.
func NewSelection(ids ...string) Selection {
	var s Selection
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Selection) add(id string) {
	if s.set == nil {
		s.set = make(map[string]struct{})
	}
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *Selection) remove(id string) {
	if _, ok := s.set[id]; !ok {
		return
	}
	delete(s.set, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Toggle adds id when checked, removes it otherwise.
func (s *Selection) Toggle(id string, checked bool) {
	if checked {
		s.add(id)
	} else {
		s.remove(id)
	}
}

// SelectAll adds or removes only the given page ids.  Ids selected on
// other pages are left alone.
func (s *Selection) SelectAll(pageIDs []string, checked bool) {
	for _, id := range pageIDs {
		s.Toggle(id, checked)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
	s.set = nil
}

// IDs returns a copy of the selected ids in selection order.
func (s Selection) IDs() []string {
	return append(make([]string, 0, len(s.ids)), s.ids...)
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s.set[id]
	return ok
}

// Len is the number of selected ids.
func (s Selection) Len() int { return len(s.ids) }

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewSelection(ids...)
	return nil
}
