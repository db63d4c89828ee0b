package sources

import (
	"math"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadNode(t *testing.T, m M) *engine.Node {
	t.Helper()
	n, err := engine.ParseNode([]byte(mustJSON(t, m)))
	require.NoError(t, err)
	return n
}

func TestBuildRecord(t *testing.T) {
	comment := payloadNode(t, commentMutation("Ugx1.Ugx2", "tb-9", "1.2K", "")).
		Path("payload", "commentEntityPayload")
	toolbar := map[string]*engine.Node{
		"tb-9": payloadNode(t, M{"key": "tb-9", "heartState": "TOOLBAR_HEART_STATE_HEARTED"}),
	}
	payments := map[string]string{"Ugx1.Ugx2": "€2.00"}

	rec := buildRecord(comment, toolbar, payments, fixedNow)
	assert.Equal(t, "Ugx1.Ugx2", rec.CID)
	assert.Equal(t, "text of Ugx1.Ugx2", rec.Text)
	assert.Equal(t, "1.2K", rec.Votes)
	assert.True(t, rec.Heart)
	assert.True(t, rec.Reply)
	require.NotNil(t, rec.Paid)
	assert.Equal(t, "€2.00", *rec.Paid)
	assert.Nil(t, rec.TimeParsed)
}

func TestBuildRecordMissingParts(t *testing.T) {
	comment := payloadNode(t, M{"properties": M{"commentId": "lonely"}})

	rec := buildRecord(comment, nil, nil, fixedNow)
	assert.Equal(t, engine.CommentRecord{CID: "lonely", Votes: "0"}, rec)
}

func TestParsePublishedTime(t *testing.T) {
	tests := []struct {
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"2 days ago", fixedNow.AddDate(0, 0, -2), true},
		{"3 hours ago (edited)", fixedNow.Add(-3 * time.Hour), true},
		{"", time.Time{}, false},
		{"(edited)", time.Time{}, false},
		{"###", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parsePublishedTime(tt.raw, fixedNow)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			want := float64(tt.want.Unix())
			if math.Abs(got-want) > 60 {
				t.Errorf("parsePublishedTime(%q) = %v, want about %v", tt.raw, got, want)
			}
		})
	}
}
