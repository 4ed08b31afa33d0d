package usajobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SearchResponse is the top-level search payload.
type SearchResponse struct {
	SearchResult SearchResult `json:"SearchResult"`
}

// SearchResult holds one page of results. Items are kept raw so each can be validated and
// decoded on its own.
type SearchResult struct {
	SearchResultCount    int               `json:"SearchResultCount"`
	SearchResultCountAll int               `json:"SearchResultCountAll"`
	SearchResultItems    []json.RawMessage `json:"SearchResultItems"`
}

// Item is a single search result.
type Item struct {
	MatchedObjectDescriptor Descriptor `json:"MatchedObjectDescriptor"`
}

// Descriptor carries the posting fields.
type Descriptor struct {
	PositionTitle           string     `json:"PositionTitle"`
	PositionURI             string     `json:"PositionURI"`
	OrganizationName        string     `json:"OrganizationName"`
	PositionLocationDisplay TextList   `json:"PositionLocationDisplay"`
	PositionLocation        []Location `json:"PositionLocation"`
	PublicationStartDate    string     `json:"PublicationStartDate"`
	UserArea                UserArea   `json:"UserArea"`
}

// Location is one duty location.
type Location struct {
	CityName               string     `json:"CityName"`
	CountrySubDivisionCode string     `json:"CountrySubDivisionCode"`
	Latitude               Coordinate `json:"Latitude"`
	Longitude              Coordinate `json:"Longitude"`
}

// UserArea wraps the detail block.
type UserArea struct {
	Details Details `json:"Details"`
}

// Details carries the long-form text and work arrangement flags.
type Details struct {
	JobSummary       TextList `json:"JobSummary"`
	MajorDuties      TextList `json:"MajorDuties"`
	TeleworkEligible Flag     `json:"TeleworkEligible"`
	RemoteIndicator  Flag     `json:"RemoteIndicator"`
}

// TextList is the canonical form of fields the API sends either as a single string or as a list.
// Numbers are kept as their JSON text; null and empty entries are dropped.
type TextList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(TextList, 0, len(raw))
		for _, elem := range raw {
			s, err := scalarText(elem)
			if err != nil {
				return err
			}
			if s != "" {
				out = append(out, s)
			}
		}
		*t = out
		return nil
	default:
		s, err := scalarText(data)
		if err != nil {
			return err
		}
		if s == "" {
			*t = nil
			return nil
		}
		*t = TextList{s}
		return nil
	}
}

// Join concatenates the entries with single spaces.
func (t TextList) Join() string {
	return strings.Join(t, " ")
}

func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(data))
	}
	return n.String(), nil
}

// Coordinate is a latitude or longitude sent as a number or a numeric string.
type Coordinate struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	if s == "" {
		*c = Coordinate{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	*c = Coordinate{Value: v, Valid: true}
	return nil
}

// Flag is a boolean sent as true/false or as a "True"/"False" string.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		switch string(bytes.TrimSpace(data)) {
		case "true":
			*f = true
			return nil
		case "false":
			*f = false
			return nil
		}
		return err
	}
	b, _ := strconv.ParseBool(strings.ToLower(s))
	*f = Flag(b)
	return nil
}
