package board

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Letters travel as one-character strings rather than rune numbers.

func letterString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

func parseLetter(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("letter must be a single character, got %q", s)
	}
	return r, nil
}

type cellJSON struct {
	Letter string `json:"letter"`
	Points int    `json:"points"`
	IsNew  bool   `json:"isNew"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(cellJSON{Letter: letterString(c.Letter), Points: c.Points, IsNew: c.IsNew})
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var cj cellJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	r, err := parseLetter(cj.Letter)
	if err != nil {
		return err
	}
	*c = Cell{Letter: r, Points: cj.Points, IsNew: cj.IsNew}
	return nil
}

type placementJSON struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter"`
	Points int    `json:"points,omitempty"`
}

func (p Placement) MarshalJSON() ([]byte, error) {
	return json.Marshal(placementJSON{Row: p.Row, Col: p.Col, Letter: letterString(p.Letter), Points: p.Points})
}

func (p *Placement) UnmarshalJSON(data []byte) error {
	var pj placementJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	r, err := parseLetter(pj.Letter)
	if err != nil {
		return err
	}
	*p = Placement{Row: pj.Row, Col: pj.Col, Letter: r, Points: pj.Points}
	return nil
}
