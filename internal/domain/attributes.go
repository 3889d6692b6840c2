package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Attribute string

const (
	AttrBiological     Attribute = "biological"
	AttrAdopted        Attribute = "adopted"
	AttrStep           Attribute = "step"
	AttrFoster         Attribute = "foster"
	AttrLegal          Attribute = "legal"
	AttrIntended       Attribute = "intended"
	AttrIVF            Attribute = "ivf"
	AttrIUI            Attribute = "iui"
	AttrDonorConceived Attribute = "donor_conceived"
	AttrFull           Attribute = "full"
	AttrHalf           Attribute = "half"
	AttrDonorSibling   Attribute = "donor_sibling"
	AttrStepSibling    Attribute = "step_sibling"
)

var allAttributes = []Attribute{
	AttrBiological, AttrAdopted, AttrStep, AttrFoster, AttrLegal, AttrIntended,
	AttrIVF, AttrIUI, AttrDonorConceived, AttrFull, AttrHalf, AttrDonorSibling, AttrStepSibling,
}

// Attributes is the closed set of tags a connection may carry. On the wire and
// in the metadata column it is a JSON array of tag names.
type Attributes struct {
	Biological     bool
	Adopted        bool
	Step           bool
	Foster         bool
	Legal          bool
	Intended       bool
	IVF            bool
	IUI            bool
	DonorConceived bool
	Full           bool
	Half           bool
	DonorSibling   bool
	StepSibling    bool
}

func NewAttributes(tags ...Attribute) Attributes {
	var a Attributes
	for _, t := range tags {
		a.Set(t)
	}
	return a
}

func (a *Attributes) flag(t Attribute) *bool {
	switch t {
	case AttrBiological:
		return &a.Biological
	case AttrAdopted:
		return &a.Adopted
	case AttrStep:
		return &a.Step
	case AttrFoster:
		return &a.Foster
	case AttrLegal:
		return &a.Legal
	case AttrIntended:
		return &a.Intended
	case AttrIVF:
		return &a.IVF
	case AttrIUI:
		return &a.IUI
	case AttrDonorConceived:
		return &a.DonorConceived
	case AttrFull:
		return &a.Full
	case AttrHalf:
		return &a.Half
	case AttrDonorSibling:
		return &a.DonorSibling
	case AttrStepSibling:
		return &a.StepSibling
	}
	return nil
}

func (a Attributes) Has(t Attribute) bool {
	f := a.flag(t)
	return f != nil && *f
}

// Set reports false for tags outside the recognized vocabulary.
func (a *Attributes) Set(t Attribute) bool {
	f := a.flag(t)
	if f == nil {
		return false
	}
	*f = true
	return true
}

func (a Attributes) Tags() []Attribute {
	tags := make([]Attribute, 0)
	for _, t := range allAttributes {
		if a.Has(t) {
			tags = append(tags, t)
		}
	}
	return tags
}

func (a Attributes) IsZero() bool {
	return a == Attributes{}
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Tags())
}

func (a *Attributes) UnmarshalJSON(data []byte) error {
	*a = Attributes{}
	if string(data) == "null" {
		return nil
	}
	var tags []Attribute
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	for _, t := range tags {
		a.Set(t)
	}
	return nil
}

func (a *Attributes) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Attributes{}
		return nil
	case []byte:
		return a.UnmarshalJSON(v)
	case string:
		return a.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("unsupported metadata type %T", src)
}

func (a Attributes) Value() (driver.Value, error) {
	return a.MarshalJSON()
}
