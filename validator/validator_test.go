package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackwatch/campaign-scraper/model"
)

func validVideo() model.Video {
	return model.Video{
		ID:            "7301",
		AccountHandle: "alpha",
		URL:           "https://www.tiktok.com/@alpha/video/7301",
		UploadedAt:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Views:         1000,
		Likes:         80,
		Comments:      15,
		Shares:        5,
	}
}

func TestValidatePassesWellFormedRecord(t *testing.T) {
	out := Validate([]model.Video{validVideo()})
	require.Len(t, out.Valid, 1)
	assert.Equal(t, 0, out.Quarantined)
	assert.InDelta(t, 0.1, out.Valid[0].EngagementRate, 1e-9)
}

func TestValidateQuarantinesHardFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Video)
	}{
		{"missing identifier", func(v *model.Video) { v.ID = "" }},
		{"missing handle", func(v *model.Video) { v.AccountHandle = "" }},
		{"missing url", func(v *model.Video) { v.URL = "" }},
		{"malformed url", func(v *model.Video) { v.URL = "not a url" }},
		{"relative url", func(v *model.Video) { v.URL = "/video/7301" }},
		{"zero timestamp", func(v *model.Video) { v.UploadedAt = time.Time{} }},
		{"negative likes", func(v *model.Video) { v.Likes = -1 }},
		{"negative views", func(v *model.Video) { v.Views = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVideo()
			tt.mutate(&v)
			out := Validate([]model.Video{v})
			assert.Empty(t, out.Valid, "record must never reach the matcher")
			assert.Equal(t, 1, out.Quarantined)
		})
	}
}

func TestValidateSoftGapsPassWithDefaults(t *testing.T) {
	v := validVideo()
	v.Caption = ""
	v.Song = ""
	v.Artist = ""
	v.EmbeddedMusicID = ""

	out := Validate([]model.Video{v})
	require.Len(t, out.Valid, 1)
}

func TestValidateZeroViewsYieldsZeroEngagement(t *testing.T) {
	v := validVideo()
	v.Views = 0
	v.Likes = 50

	out := Validate([]model.Video{v})
	require.Len(t, out.Valid, 1)
	assert.Zero(t, out.Valid[0].EngagementRate)
}

func TestValidateMixedBatch(t *testing.T) {
	bad := validVideo()
	bad.ID = ""

	out := Validate([]model.Video{validVideo(), bad, validVideo()})
	assert.Len(t, out.Valid, 2)
	assert.Equal(t, 1, out.Quarantined)
}
