package field

import (
	"github.com/arrowmex/arrowmex-bridge/hostdata"
	"github.com/arrowmex/arrowmex-bridge/utfconv"
)

// utf16Out converts library UTF-8 text to a host string.
func utf16Out(s string) (hostdata.String, error) {
	units, err := utfconv.UTF8ToUTF16(s)
	if err != nil {
		return nil, err
	}
	return hostdata.String(units), nil
}
