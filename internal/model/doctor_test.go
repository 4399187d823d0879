package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDoctorRef(t *testing.T) {
	realID := uuid.New()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, ref DoctorRef)
	}{
		{
			name: "single digit is demo",
			raw:  "1",
			check: func(t *testing.T, ref DoctorRef) {
				assert.True(t, ref.IsDemo())
				assert.Equal(t, 0, ref.Index)
			},
		},
		{
			name: "multi digit is demo",
			raw:  "6",
			check: func(t *testing.T, ref DoctorRef) {
				assert.True(t, ref.IsDemo())
				assert.Equal(t, 5, ref.Index)
			},
		},
		{
			name: "uuid is real",
			raw:  realID.String(),
			check: func(t *testing.T, ref DoctorRef) {
				assert.False(t, ref.IsDemo())
				assert.Equal(t, realID, ref.ID)
			},
		},
		{name: "empty", raw: "", wantErr: true},
		{name: "zero is not a valid demo index", raw: "0", wantErr: true},
		{name: "garbage", raw: "not-a-doctor", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseDoctorRef(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, ref)
		})
	}
}

func TestDoctorRefString(t *testing.T) {
	demo, err := ParseDoctorRef("3")
	require.NoError(t, err)
	assert.Equal(t, "3", demo.String())

	id := uuid.New()
	real, err := ParseDoctorRef(id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), real.String())
}
