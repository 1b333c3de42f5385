package spaceweather

import (
	"bytes"
	"strconv"
)

// flexFloat unmarshals JSON numbers that upstreams deliver either bare or
// quoted (auroras.live returns "6.2" style strings for ace values).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
