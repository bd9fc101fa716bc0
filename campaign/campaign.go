// Package campaign loads the campaign inputs: the tracked-account list and
// the target-sound list.
package campaign

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/common"
	"github.com/trackwatch/campaign-scraper/model"
)

// Campaign sheets carry the sound as a share URL in several shapes; the
// canonical numeric ID is buried in the slug.
var soundIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`original-sound-(\d+)`),
	regexp.MustCompile(`song-(\d+)`),
	regexp.MustCompile(`music/[^-]+-(\d+)`),
	regexp.MustCompile(`-(\d+)$`),
}

// ExtractSoundID pulls the canonical numeric sound identifier out of a sound
// or music share URL. Returns an empty string when no pattern matches.
func ExtractSoundID(soundURL string) string {
	s := strings.TrimSpace(soundURL)
	if s == "" {
		return ""
	}
	for _, p := range soundIDPatterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// LoadAccounts reads the tracked-account list: one handle or profile URL per
// line, '#' comments ignored, duplicates removed preserving first-seen order.
func LoadAccounts(path string) ([]string, error) {
	lines, err := common.ReadLinesFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read account list: %w", err)
	}

	seen := make(map[string]struct{})
	var handles []string
	for _, line := range lines {
		handle := common.ProfileHandle(line)
		if handle == "" {
			log.Warn().Str("entry", line).Msg("Skipping account entry without a usable handle")
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}

	if len(handles) == 0 {
		return nil, fmt.Errorf("account list %s contains no usable handles", path)
	}
	return handles, nil
}

// LoadTargets reads the target-sound list CSV. Column headers are matched
// case-insensitively against the names campaign sheets actually use. Rows
// yielding neither a sound identifier nor a song title are skipped and
// logged. An empty result is an error: a campaign without targets cannot
// match anything.
func LoadTargets(path string) ([]model.TargetSound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target list: %w", err)
	}
	defer f.Close()

	targets, err := parseTargets(f)
	if err != nil {
		return nil, fmt.Errorf("parse target list %s: %w", path, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("target list %s contains no usable entries", path)
	}

	log.Info().Str("file", path).Int("targets", len(targets)).Msg("Loaded target-sound list")
	return targets, nil
}

var (
	soundColumns  = []string{"tiktok sound id", "tiktok sound", "sound id", "sound_id", "sound url", "sound"}
	songColumns   = []string{"song", "song title", "title"}
	artistColumns = []string{"artist", "artist name", "artist_name"}
)

func parseTargets(r io.Reader) ([]model.TargetSound, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	soundIdx := findColumn(header, soundColumns)
	songIdx := findColumn(header, songColumns)
	artistIdx := findColumn(header, artistColumns)
	if soundIdx < 0 && songIdx < 0 {
		return nil, fmt.Errorf("no sound or song column in header %v", header)
	}

	var targets []model.TargetSound
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("Skipping unreadable target row")
			continue
		}

		tgt := model.TargetSound{
			SourceURL: cell(row, soundIdx),
			Song:      cell(row, songIdx),
			Artist:    cell(row, artistIdx),
		}
		tgt.SoundID = ExtractSoundID(tgt.SourceURL)
		if tgt.SoundID == "" && tgt.Song == "" {
			log.Warn().Strs("row", row).Msg("Skipping target row without identifier or title")
			continue
		}
		targets = append(targets, tgt)
	}
	return targets, nil
}

func findColumn(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
