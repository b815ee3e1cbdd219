package orchestration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Number is a float64 that survives a JSON round trip when it is not
// finite. NaN and the infinities are written as the strings "NaN", "+Inf"
// and "-Inf"; finite values stay plain JSON numbers.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler. Any string other than the
// three non-finite spellings is rejected.
func (n *Number) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(data, []byte(`"`)) {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "NaN":
		*n = Number(math.NaN())
	case "+Inf":
		*n = Number(math.Inf(1))
	case "-Inf":
		*n = Number(math.Inf(-1))
	default:
		return fmt.Errorf("invalid number %q", s)
	}
	return nil
}
