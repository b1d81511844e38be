package record

// Entry is one decoded field: its name, display text and the source value.
type Entry struct {
	Name   string
	Text   string
	Source Value
}

// Decoded is a record flattened to display text. Entries keep the order of
// the source mapping and names are unique.
type Decoded struct {
	entries []Entry
	index   map[string]int
}

// Decode flattens fields into display text. A repeated name keeps its first
// position and takes the last value.
func Decode(fields []Field) Decoded {
	d := Decoded{
		entries: make([]Entry, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		e := Entry{Name: f.Name, Text: f.Value.Text(), Source: f.Value}
		if i, ok := d.index[f.Name]; ok {
			d.entries[i] = e
			continue
		}
		d.index[f.Name] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// Entries returns the decoded fields in source order.
func (d Decoded) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len is the number of distinct field names.
func (d Decoded) Len() int { return len(d.entries) }

// Get returns the display text of the named field.
func (d Decoded) Get(name string) (string, bool) {
	i, ok := d.index[name]
	if !ok {
		return "", false
	}
	return d.entries[i].Text, true
}

// List returns the elements of an array field. ok is false when the field is
// absent or is not an array.
func (d Decoded) List(name string) ([]Value, bool) {
	i, ok := d.index[name]
	if !ok || d.entries[i].Source.Kind != KindArray {
		return nil, false
	}
	return d.entries[i].Source.Elems, true
}
