package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		hasAttachment bool
		isReply       bool
		want          bool
	}{
		{
			name:          "keyword with attachment",
			content:       "drink check",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "keyword without attachment",
			content:       "drink check",
			hasAttachment: false,
			want:          false,
		},
		{
			name:          "reply with attachment and no keyword",
			content:       "cheers!",
			hasAttachment: true,
			isReply:       true,
			want:          true,
		},
		{
			name:          "reply without attachment",
			content:       "drink check",
			hasAttachment: false,
			isReply:       true,
			want:          false,
		},
		{
			name:          "short keyword",
			content:       "dc",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "keyword with exclamation",
			content:       "DRINK CHECK!",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "keyword with question mark",
			content:       "drink check?",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "keyword with period",
			content:       "dc.",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "spaced alternate spelling",
			content:       "d c",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "keyword embedded in sentence",
			content:       "time for a drink check everyone",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "leading and trailing whitespace",
			content:       "   dc   ",
			hasAttachment: true,
			want:          true,
		},
		{
			name:          "unrelated content with attachment",
			content:       "look at my dog",
			hasAttachment: true,
			want:          false,
		},
		{
			name:          "empty content with attachment",
			content:       "",
			hasAttachment: true,
			want:          false,
		},
		{
			name:          "empty everything",
			content:       "",
			hasAttachment: false,
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.content, tt.hasAttachment, tt.isReply)
			assert.Equal(t, tt.want, got)

			// Pure predicate: repeated calls with the same inputs agree.
			assert.Equal(t, got, Classify(tt.content, tt.hasAttachment, tt.isReply))
		})
	}
}
