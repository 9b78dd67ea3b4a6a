package model

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// FlexString decodes a JSON string or number into its textual form.
// The backend sends phone numbers, years and amounts either way.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("flex string: %s is neither a string nor a number", data)
	}
	*f = FlexString(data)
	return nil
}

// String returns the raw text.
func (f FlexString) String() string { return string(f) }

// Int parses the value as an integer, returning 0 when it is not one.
func (f FlexString) Int() int {
	n, _ := strconv.Atoi(string(f))
	return n
}
