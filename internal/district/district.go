package district

// District is one selectable directory entry.
type District struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Directory is the ordered, read-only list of selectable districts.
// Lookups are case-insensitive; the stored casing is canonical.
type Directory struct {
	entries []District
	index   map[string]int // Normalize(name) -> position
}

// New builds a Directory from entries, preserving order. Later entries
// whose normalized name duplicates an earlier one are dropped.
func New(entries []District) *Directory {
	d := &Directory{
		entries: make([]District, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := Normalize(e.Name)
		if key == "" {
			continue
		}
		if _, dup := d.index[key]; dup {
			continue
		}
		d.index[key] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// FromNames builds a Directory without coordinates, as received by a client
// from the districts endpoint.
func FromNames(names []string) *Directory {
	entries := make([]District, len(names))
	for i, n := range names {
		entries[i] = District{Name: n}
	}
	return New(entries)
}

// Kerala returns the default directory: the 14 districts of Kerala with the
// coordinates used to query the weather provider.
func Kerala() *Directory {
	return New([]District{
		{Name: "Thiruvananthapuram", Latitude: 8.5241, Longitude: 76.9366},
		{Name: "Kollam", Latitude: 8.8932, Longitude: 76.6141},
		{Name: "Pathanamthitta", Latitude: 9.2648, Longitude: 76.7870},
		{Name: "Alappuzha", Latitude: 9.4981, Longitude: 76.3388},
		{Name: "Kottayam", Latitude: 9.5916, Longitude: 76.5222},
		{Name: "Idukki", Latitude: 9.8497, Longitude: 76.9744},
		{Name: "Ernakulam", Latitude: 9.9816, Longitude: 76.2999},
		{Name: "Thrissur", Latitude: 10.5276, Longitude: 76.2144},
		{Name: "Palakkad", Latitude: 10.7867, Longitude: 76.6548},
		{Name: "Malappuram", Latitude: 11.0510, Longitude: 76.0711},
		{Name: "Kozhikode", Latitude: 11.2588, Longitude: 75.7804},
		{Name: "Wayanad", Latitude: 11.6854, Longitude: 76.1320},
		{Name: "Kannur", Latitude: 11.8745, Longitude: 75.3704},
		{Name: "Kasaragod", Latitude: 12.5102, Longitude: 74.9852},
	})
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Names returns the canonical names in directory order.
func (d *Directory) Names() []string {
	if d == nil {
		return []string{}
	}
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the directory entries.
func (d *Directory) Entries() []District {
	if d == nil {
		return nil
	}
	out := make([]District, len(d.entries))
	copy(out, d.entries)
	return out
}

// Resolve looks text up case-insensitively after trimming surrounding
// whitespace and returns the stored entry.
func (d *Directory) Resolve(text string) (District, bool) {
	if d == nil {
		return District{}, false
	}
	i, ok := d.index[Normalize(text)]
	if !ok {
		return District{}, false
	}
	return d.entries[i], true
}

// Contains reports whether name is exactly (case-sensitively) a canonical name.
func (d *Directory) Contains(name string) bool {
	e, ok := d.Resolve(name)
	return ok && e.Name == name
}
