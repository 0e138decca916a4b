package model

// City is one entry of the browse-by-city catalogue.
type City struct {
	Name            string   `json:"name"`
	NameEn          string   `json:"nameEn"`
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
}

// Names returns the local name followed by the English one when it differs.
func (c City) Names() []string {
	if c.NameEn == "" || c.NameEn == c.Name {
		return []string{c.Name}
	}
	return []string{c.Name, c.NameEn}
}
