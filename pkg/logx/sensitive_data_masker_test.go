package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"currency_flip/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Password",
			input:  []byte(`{"hello":"world","password":"abc123"}`),
			output: []byte(`{"hello":"world","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "Access token",
			input:  []byte(`{"accessToken":"eyJhbGciOiJFUzI1NiIsInR5cC","refreshToken":"eyJhbGciOiJFUzI1NiIsInR5cCI6IkpXVCJ9"}`),
			output: []byte(`{"accessToken":"[MASKED]","refreshToken":"[MASKED]"}`),
		},
		{
			name:   "Session id and account name",
			input:  []byte(`{"version": 1, "accountName": "flipper", "POESESSID": "0123456789abcdef"}`),
			output: []byte(`{"version": 1, "accountName": "[MASKED]", "POESESSID": "[MASKED]"}`),
		},
		{
			name:   "Session cookie",
			input:  []byte("Cookie: POESESSID=0123456789abcdef; league=Standard\r\n"),
			output: []byte("Cookie: POESESSID=[MASKED]; league=Standard\r\n"),
		},
		{
			name:   "Bot token",
			input:  []byte("POST /bot123456:AAH-token_value/sendMessage HTTP/1.1\r\n"),
			output: []byte("POST /bot[MASKED]/sendMessage HTTP/1.1\r\n"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			output := masker.Mask(tc.input)

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}

func TestNopSensitiveDataMasker(t *testing.T) {
	input := []byte(`{"POESESSID":"0123456789abcdef"}`)

	require.Equal(t, input, logx.NewNopSensitiveDataMasker().Mask(input))
}
