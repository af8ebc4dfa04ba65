package contentservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	testCases := []struct {
		name    string
		actorID int
		ownerID int
		want    bool
	}{
		{name: "owner", actorID: 1, ownerID: 1, want: true},
		{name: "not owner", actorID: 2, ownerID: 1, want: false},
		{name: "zero actor", actorID: 0, ownerID: 1, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, authorize(tc.actorID, tc.ownerID))
		})
	}
}
