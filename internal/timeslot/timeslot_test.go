package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "hour and minutes", text: "i will take a break at 9:45", want: "9:45", wantOK: true},
		{name: "meridiem is upper-cased", text: "break at 9:45 am", want: "9:45 AM", wantOK: true},
		{name: "meridiem without space", text: "around 3:15pm please", want: "3:15 PM", wantOK: true},
		{name: "missing minutes default", text: "break at 4 pm", want: "4:00 PM", wantOK: true},
		{name: "dot separator kept", text: "at 10.30", want: "10.30", wantOK: true},
		{name: "24 hour clock", text: "at 14:30", want: "14:30", wantOK: true},
		{name: "no range check", text: "at 25:99", want: "25:99", wantOK: true},
		{name: "first match wins", text: "at 9 or at 10", want: "9:00", wantOK: true},
		{name: "at sign filler", text: "break @ 11:05", want: "11:05", wantOK: true},
		{name: "three digits are not an hour", text: "room 123", wantOK: false},
		{name: "no digits", text: "taking a break", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
