package middleware

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"
)

func TestSenderID(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		update telego.Update
		wantID int64
		wantOK bool
	}{
		{
			name:   "message",
			update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 7}}},
			wantID: 7,
			wantOK: true,
		},
		{
			name:   "channel post without sender",
			update: telego.Update{Message: &telego.Message{}},
		},
		{
			name:   "callback",
			update: telego.Update{CallbackQuery: &telego.CallbackQuery{From: telego.User{ID: 9}}},
			wantID: 9,
			wantOK: true,
		},
		{
			name: "other update",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			id, ok := senderID(tc.update)
			rq.Equal(tc.wantOK, ok)
			rq.Equal(tc.wantID, id)
		})
	}
}
