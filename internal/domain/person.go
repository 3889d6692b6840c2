package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrPersonNotFound     = errors.New("person not found")
	ErrInvalidPartialDate = errors.New("invalid partial date")
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// PartialDate is a calendar date where month and day may be unknown (zero).
type PartialDate struct {
	Year  int
	Month int
	Day   int
}

func ParsePartialDate(s string) (*PartialDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	// Full timestamps from the database keep only the date part.
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10]
	}

	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPartialDate, s)
	}

	var d PartialDate
	fields := []*int{&d.Year, &d.Month, &d.Day}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPartialDate, s)
		}
		*fields[i] = n
	}

	if d.Year <= 0 || d.Month < 0 || d.Month > 12 || d.Day < 0 || d.Day > 31 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPartialDate, s)
	}
	if d.Month == 0 && d.Day != 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPartialDate, s)
	}
	return &d, nil
}

func (d PartialDate) String() string {
	switch {
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compare orders two dates at the precision both of them share. A component
// unknown on either side stops the comparison and the dates count as equal.
func (d PartialDate) Compare(o PartialDate) int {
	if c := compareInt(d.Year, o.Year); c != 0 {
		return c
	}
	if d.Month == 0 || o.Month == 0 {
		return 0
	}
	if c := compareInt(d.Month, o.Month); c != 0 {
		return c
	}
	if d.Day == 0 || o.Day == 0 {
		return 0
	}
	return compareInt(d.Day, o.Day)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d PartialDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *PartialDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePartialDate(s)
	if err != nil {
		return err
	}
	if parsed == nil {
		*d = PartialDate{}
		return nil
	}
	*d = *parsed
	return nil
}

func (d *PartialDate) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		// Date columns come back from the driver as a full day.
		*d = PartialDate{Year: v.Year(), Month: int(v.Month()), Day: v.Day()}
		return nil
	case nil:
		*d = PartialDate{}
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidPartialDate, src)
	}
	parsed, err := ParsePartialDate(s)
	if err != nil {
		return err
	}
	if parsed != nil {
		*d = *parsed
	}
	return nil
}

func (d PartialDate) Value() (driver.Value, error) {
	return d.String(), nil
}

type Person struct {
	ID             string       `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	Gender         Gender       `json:"gender" db:"gender"`
	DateOfBirth    *PartialDate `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Donor          bool         `json:"donor" db:"donor"`
	IsSelf         bool         `json:"is_self" db:"is_self"`
	IsAlive        bool         `json:"is_alive" db:"is_alive"`
	FamilyTreeID   *string      `json:"family_tree_id,omitempty" db:"family_tree_id"`
	OrganizationID *string      `json:"organization_id,omitempty" db:"organization_id"`
}

// Surname is the last whitespace-separated token of the display name.
func (p *Person) Surname() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (p *Person) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return p.ID
	}
	return p.Name
}
