package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlert(t *testing.T) {
	cases := map[string]struct {
		data   []byte
		parsed *Alert
		expErr error
	}{
		"valid - close notify": {
			data:   []byte{0x01, 0x00},
			parsed: &Alert{Level: Warning, Description: CloseNotify},
		},
		"valid - unexpected message": {
			data:   []byte{0x02, 0x0A},
			parsed: &Alert{Level: Fatal, Description: UnexpectedMessage},
		},
		"invalid - too short": {
			data:   []byte{0x02},
			expErr: errBufferTooSmall,
		},
		"invalid - trailing byte": {
			data:   []byte{0x02, 0x0A, 0x00},
			expErr: errBufferTooSmall,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			a := &Alert{}
			err := a.Unmarshal(testCase.data)
			if testCase.expErr != nil {
				assert.ErrorIs(t, err, testCase.expErr)

				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.parsed, a)

			raw, err := a.Marshal()
			assert.NoError(t, err)
			assert.Equal(t, testCase.data, raw)
		})
	}
}
