package field

import (
	"fmt"
	"strconv"
	"strings"
)

// InputType mirrors the platform input type bitmask (class in the low
// nibble, variation in the next byte).
type InputType int

const (
	InputTypeClassMask     InputType = 0x0000000f
	InputTypeVariationMask InputType = 0x00000ff0

	InputTypeClassText   InputType = 0x01
	InputTypeClassNumber InputType = 0x02
	InputTypeClassPhone  InputType = 0x03

	TextVariationURI             InputType = 0x10
	TextVariationEmailAddress    InputType = 0x20
	TextVariationPassword        InputType = 0x80
	TextVariationVisiblePassword InputType = 0x90
	TextVariationWebEditText     InputType = 0xa0
	TextVariationWebEmailAddress InputType = 0xd0
	TextVariationWebPassword     InputType = 0xe0

	NumberVariationPassword InputType = 0x10
)

var inputTypeNames = map[string]InputType{
	"none":                0,
	"text":                InputTypeClassText,
	"texturi":             InputTypeClassText | TextVariationURI,
	"textemailaddress":    InputTypeClassText | TextVariationEmailAddress,
	"textpassword":        InputTypeClassText | TextVariationPassword,
	"textvisiblepassword": InputTypeClassText | TextVariationVisiblePassword,
	"textwebedittext":     InputTypeClassText | TextVariationWebEditText,
	"textwebemailaddress": InputTypeClassText | TextVariationWebEmailAddress,
	"textwebpassword":     InputTypeClassText | TextVariationWebPassword,
	"number":              InputTypeClassNumber,
	"numberpassword":      InputTypeClassNumber | NumberVariationPassword,
	"phone":               InputTypeClassPhone,
}

// ParseInputType accepts a symbolic name ("textPassword"), a decimal or a
// 0x-prefixed hex value. Several names may be joined with '|'.
func ParseInputType(raw string) (InputType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	var out InputType
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if v, ok := inputTypeNames[strings.ToLower(part)]; ok {
			out |= v
			continue
		}
		n, err := strconv.ParseInt(part, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("unknown input type %q", part)
		}
		out |= InputType(n)
	}
	return out, nil
}

// Class returns the input class bits.
func (t InputType) Class() InputType { return t & InputTypeClassMask }

// Variation returns the variation bits.
func (t InputType) Variation() InputType { return t & InputTypeVariationMask }

// IsPassword reports whether the input type masks its content.
func (t InputType) IsPassword() bool {
	switch t.Class() {
	case InputTypeClassNumber:
		return t.Variation() == NumberVariationPassword
	case InputTypeClassText:
		switch t.Variation() {
		case TextVariationPassword, TextVariationVisiblePassword, TextVariationWebPassword:
			return true
		}
	}
	return false
}
