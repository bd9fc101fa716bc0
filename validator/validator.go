// Package validator rejects malformed video records before they reach
// matching or persistence.
package validator

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/model"
)

// Outcome separates the records that passed validation from the count of
// quarantined ones. Valid records have their engagement rate computed.
type Outcome struct {
	Valid       []model.Video
	Quarantined int
}

// Validate applies the hard checks to each record. A record failing a hard
// check (missing identifier, malformed URL, unparsable timestamp, negative
// counters) is quarantined: counted, logged and excluded, never fatal. Soft
// gaps such as a missing caption pass through with defaults.
func Validate(videos []model.Video) Outcome {
	out := Outcome{Valid: make([]model.Video, 0, len(videos))}
	for _, v := range videos {
		if err := check(v); err != nil {
			out.Quarantined++
			log.Warn().Err(err).Str("url", v.URL).Msg("Quarantined malformed video record")
			continue
		}
		v.ComputeEngagementRate()
		out.Valid = append(out.Valid, v)
	}
	return out
}

func check(v model.Video) error {
	if v.ID == "" {
		return fmt.Errorf("missing video identifier")
	}
	if v.AccountHandle == "" {
		return fmt.Errorf("missing account handle")
	}
	if v.URL == "" {
		return fmt.Errorf("missing video URL")
	}
	u, err := url.Parse(v.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("malformed video URL %q", v.URL)
	}
	if v.UploadedAt.IsZero() {
		return fmt.Errorf("missing or unparsable upload timestamp")
	}
	if v.Views < 0 || v.Likes < 0 || v.Comments < 0 || v.Shares < 0 {
		return fmt.Errorf("negative engagement counter")
	}
	return nil
}
